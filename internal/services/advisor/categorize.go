package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"subkeeper/internal/models"
	"subkeeper/internal/services/ai"
)

const categorizeSystemPrompt = "Определи category и tags строго по схеме. Допустимые категории: ['Entertainment','Productivity','Education','Utilities','Finance','Health','Gaming','Cloud','Other']. Если сомневаешься — Other. Верни строго JSON."

// Categorize asks the model to classify one subscription by name, notes and
// URL. Unknown categories collapse to Other; tags are trimmed strings only.
func (a *Advisor) Categorize(ctx context.Context, name, notes, url string) (models.CategorizeResult, error) {
	if strings.TrimSpace(name) == "" {
		return models.CategorizeResult{}, fmt.Errorf("name is required")
	}

	raw, err := a.llm.Call(ctx, ai.Options{
		System: categorizeSystemPrompt,
		Prompt: buildCategorizePrompt(name, notes, url),
		JSON:   true,
	})
	if err != nil {
		return models.CategorizeResult{}, err
	}

	var parsed struct {
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return models.CategorizeResult{}, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	result := models.CategorizeResult{
		Category: normalizeCategory(parsed.Category),
		Tags:     []string{},
	}
	for _, tag := range parsed.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			result.Tags = append(result.Tags, trimmed)
		}
	}
	return result, nil
}

func buildCategorizePrompt(name, notes, url string) string {
	if notes == "" {
		notes = "—"
	}
	if url == "" {
		url = "—"
	}
	return fmt.Sprintf("Название: %s\nОписание: %s\nURL: %s\n\nВерни JSON с ключами \"category\" и \"tags\" (массив строк).", name, notes, url)
}

func normalizeCategory(category string) string {
	for _, allowed := range models.Categories {
		if category == allowed {
			return allowed
		}
	}
	return "Other"
}
