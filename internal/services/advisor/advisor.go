// Package advisor analyzes a subscription list for overlapping services and
// cost-saving opportunities. It combines a keyword rule base with an optional
// LLM pass; when the model is unavailable or returns junk, the rule-based
// answer is served instead.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"subkeeper/internal/models"
	"subkeeper/internal/services/ai"
)

const agentSystemPrompt = `Ты опытный финансовый советник по подпискам.
- Анализируй каждый сервис и категоризируй: видео (Netflix, Кинопоиск, Иви/IVI, Okko, Амедиатека, Apple TV+, Megogo, Wink, Start, T-Премиум), музыка (Spotify, Яндекс.Музыка, Apple Music и др.), пакеты и банки (СберПрайм, Яндекс.Плюс, Тинькофф Премиум) и т.д.
- Ищи дубли и пересечения (например, Netflix vs Кинопоиск vs Иви) и давай конкретный совет: что оставить, что отключить, где перейти на годовой план.
- Обязательно считай экономию в рублях за месяц и объясняй, почему рекомендация полезна (перекрытие каталога, бонусы в пакетах и т.п.).
- Строго возвращай JSON с конфликтами, советами и расчётом monthlyBefore/After.`

// Advisor runs the optimization agent
type Advisor struct {
	llm *ai.Client
}

// New creates an Advisor backed by the given LLM client
func New(llm *ai.Client) *Advisor {
	return &Advisor{llm: llm}
}

// RuleBasedAnalysis builds an AgentResult from the keyword rule base alone.
// Within each segment the cheapest service is kept and the rest are marked
// redundant; savings are the monthly cost of everything marked redundant.
func RuleBasedAnalysis(subs []models.Subscription) *models.AgentResult {
	result := &models.AgentResult{
		Conflicts: []models.Conflict{},
		Advice:    []models.Advice{},
	}

	var segmentOrder []string
	grouped := make(map[string][]models.Subscription)
	for _, sub := range subs {
		result.MonthlyBefore += sub.MonthlyCost()
		segment := classifySegment(sub.Name)
		if _, seen := grouped[segment]; !seen {
			segmentOrder = append(segmentOrder, segment)
		}
		grouped[segment] = append(grouped[segment], sub)
	}

	var totalSaving float64
	for _, segment := range segmentOrder {
		items := grouped[segment]
		if segment == SegmentOther || len(items) < 2 {
			continue
		}

		sorted := make([]models.Subscription, len(items))
		copy(sorted, items)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].MonthlyCost() < sorted[j].MonthlyCost()
		})

		keeper := sorted[0]
		redundant := sorted[1:]

		var saving float64
		names := make([]string, 0, len(items))
		dropped := make([]string, 0, len(redundant))
		for _, item := range items {
			names = append(names, item.Name)
		}
		for _, item := range redundant {
			saving += item.MonthlyCost()
			dropped = append(dropped, fmt.Sprintf("%s (%s ₽/мес)", item.Name, models.FormatMoney(item.MonthlyCost())))
		}
		totalSaving += saving

		result.Conflicts = append(result.Conflicts, models.Conflict{
			Group:  segment,
			Items:  names,
			Reason: fmt.Sprintf("%s сервисы дублируют друг друга по контенту и оплачиваются параллельно", segment),
		})
		result.Advice = append(result.Advice, models.Advice{
			Title: "Оптимизировать " + segment,
			Detail: fmt.Sprintf("Оставь %s (%s ₽/мес), отключи %s → экономия %s ₽/мес",
				keeper.Name, models.FormatMoney(keeper.MonthlyCost()),
				strings.Join(dropped, ", "), models.FormatMoney(saving)),
			SavingPerMonth: saving,
		})
	}

	result.MonthlyAfter = result.MonthlyBefore - totalSaving
	if result.MonthlyAfter < 0 {
		result.MonthlyAfter = 0
	}
	result.SavingPerMonth = result.MonthlyBefore - result.MonthlyAfter

	if len(result.Advice) == 0 {
		result.Advice = append(result.Advice, models.Advice{
			Title:  "Обновить годовые планы",
			Detail: "Проверь, есть ли годовые планы со скидкой 15–20% и объединённые пакеты вроде СберПрайм или Яндекс Плюс.",
		})
	}

	return result
}

// Analyze runs the full agent. In mock mode or on any upstream failure the
// rule-based result is returned; the error channel is reserved for input
// problems, not model ones.
func (a *Advisor) Analyze(ctx context.Context, subs []models.Subscription) (*models.AgentResult, error) {
	if len(subs) == 0 {
		return nil, fmt.Errorf("provide at least one subscription")
	}

	fallback := RuleBasedAnalysis(subs)
	if a.llm.Mock() {
		return fallback, nil
	}

	raw, err := a.llm.Call(ctx, ai.Options{
		System: agentSystemPrompt,
		Prompt: buildAgentPrompt(subs),
		JSON:   true,
	})
	if err != nil {
		log.Printf("advisor: LLM call failed, using rule-based analysis: %v", err)
		return fallback, nil
	}

	result, ok := normalizeAgentResult(raw, fallback.MonthlyBefore)
	if !ok {
		log.Printf("advisor: could not parse LLM response, using rule-based analysis")
		return fallback, nil
	}
	return result, nil
}

func buildAgentPrompt(subs []models.Subscription) string {
	var sb strings.Builder
	for _, sub := range subs {
		category := sub.Category
		if category == "" {
			category = "—"
		}
		notes := sub.Notes
		if notes == "" {
			notes = "—"
		}
		fmt.Fprintf(&sb, "ID: %s | Название: %s | Период: %s | Цена в месяц: %s | Категория: %s | Ноты: %s\n",
			sub.ID, sub.Name, sub.FrequencyLabel, models.FormatMoney(sub.MonthlyCost()), category, notes)
	}

	sb.WriteString("\nВерни СТРОГО JSON со структурой:\n")
	sb.WriteString("{\n  \"conflicts\": Conflict[],\n  \"advice\": Advice[],\n  \"monthlyBefore\": number,\n  \"monthlyAfter\": number,\n  \"savingPerMonth\": number\n}\n")
	sb.WriteString("Где advice.savingPerMonth опционален. Избегай выдуманных данных — если не уверен, поясни reason и оставь saving пустым.")
	return sb.String()
}

// normalizeAgentResult validates the model's JSON, dropping malformed
// conflicts and advice entries and filling missing totals from the estimate.
func normalizeAgentResult(raw string, estimatedBefore float64) (*models.AgentResult, bool) {
	var parsed struct {
		Conflicts      []models.Conflict `json:"conflicts"`
		Advice         []models.Advice   `json:"advice"`
		MonthlyBefore  *float64          `json:"monthlyBefore"`
		MonthlyAfter   *float64          `json:"monthlyAfter"`
		SavingPerMonth *float64          `json:"savingPerMonth"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, false
	}

	result := &models.AgentResult{
		Conflicts: []models.Conflict{},
		Advice:    []models.Advice{},
	}

	for _, conflict := range parsed.Conflicts {
		group := strings.TrimSpace(conflict.Group)
		reason := strings.TrimSpace(conflict.Reason)
		var items []string
		for _, item := range conflict.Items {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		if group == "" || reason == "" || len(items) == 0 {
			continue
		}
		result.Conflicts = append(result.Conflicts, models.Conflict{Group: group, Items: items, Reason: reason})
	}

	for _, advice := range parsed.Advice {
		title := strings.TrimSpace(advice.Title)
		detail := strings.TrimSpace(advice.Detail)
		if title == "" || detail == "" {
			continue
		}
		entry := models.Advice{Title: title, Detail: detail}
		if advice.SavingPerMonth > 0 {
			entry.SavingPerMonth = advice.SavingPerMonth
		}
		result.Advice = append(result.Advice, entry)
	}

	if parsed.MonthlyBefore != nil && *parsed.MonthlyBefore > 0 {
		result.MonthlyBefore = *parsed.MonthlyBefore
	} else {
		result.MonthlyBefore = estimatedBefore
	}
	if parsed.MonthlyAfter != nil && *parsed.MonthlyAfter > 0 {
		result.MonthlyAfter = *parsed.MonthlyAfter
	} else {
		result.MonthlyAfter = result.MonthlyBefore - 1
		if result.MonthlyAfter < 0 {
			result.MonthlyAfter = 0
		}
	}
	if parsed.SavingPerMonth != nil && *parsed.SavingPerMonth > 0 {
		result.SavingPerMonth = *parsed.SavingPerMonth
	} else {
		result.SavingPerMonth = result.MonthlyBefore - result.MonthlyAfter
		if result.SavingPerMonth < 0 {
			result.SavingPerMonth = 0
		}
	}

	return result, true
}
