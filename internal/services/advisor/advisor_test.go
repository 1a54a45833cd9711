package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subkeeper/internal/models"
	"subkeeper/internal/services/ai"
)

func monthlySub(id, name string, cost float64) models.Subscription {
	return models.Subscription{
		ID: id, Name: name, Cost: cost, Currency: "₽", Months: 1,
		FrequencyLabel: "Ежемесячно", NextPaymentDate: "2026-04-01",
	}
}

// llmStub serves a fixed chat-completion content string
func llmStub(t *testing.T, content string) (*httptest.Server, *ai.Client) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server, ai.New(server.URL, "gpt-4o-mini", "key", false)
}

func TestClassifySegment(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Netflix Premium", SegmentStreaming},
		{"Кинопоиск", SegmentStreaming},
		{"ИВИ", SegmentStreaming},
		{"Spotify Family", SegmentMusic},
		{"Яндекс Музыка", SegmentMusic},
		{"СберПрайм", SegmentBundle},
		{"Тинькофф Pro", SegmentBundle},
		{"Adobe Creative Cloud", SegmentOther},
		{"GitHub Copilot", SegmentOther},
	}

	for _, tt := range tests {
		if got := classifySegment(tt.name); got != tt.want {
			t.Errorf("classifySegment(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRuleBasedAnalysisFindsDuplicates(t *testing.T) {
	subs := []models.Subscription{
		monthlySub("1", "Netflix Premium", 599),
		monthlySub("2", "Кинопоиск", 300),
		monthlySub("3", "Spotify Family", 269),
	}

	result := RuleBasedAnalysis(subs)

	if len(result.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(result.Conflicts))
	}
	conflict := result.Conflicts[0]
	if conflict.Group != SegmentStreaming || len(conflict.Items) != 2 {
		t.Errorf("unexpected conflict: %+v", conflict)
	}

	if len(result.Advice) != 1 {
		t.Fatalf("got %d advice entries, want 1", len(result.Advice))
	}
	advice := result.Advice[0]
	if advice.SavingPerMonth != 599 {
		t.Errorf("saving = %v, want 599 (drop the pricier streaming service)", advice.SavingPerMonth)
	}
	if !strings.Contains(advice.Detail, "Кинопоиск") || !strings.Contains(advice.Detail, "Netflix Premium") {
		t.Errorf("detail should name keeper and dropped service: %q", advice.Detail)
	}

	if result.MonthlyBefore != 1168 {
		t.Errorf("monthlyBefore = %v, want 1168", result.MonthlyBefore)
	}
	if result.MonthlyAfter != 569 {
		t.Errorf("monthlyAfter = %v, want 569", result.MonthlyAfter)
	}
	if result.SavingPerMonth != 599 {
		t.Errorf("savingPerMonth = %v, want 599", result.SavingPerMonth)
	}
}

func TestRuleBasedAnalysisNoDuplicates(t *testing.T) {
	subs := []models.Subscription{
		monthlySub("1", "Netflix Premium", 599),
		monthlySub("2", "Spotify Family", 269),
	}

	result := RuleBasedAnalysis(subs)

	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %+v", result.Conflicts)
	}
	if len(result.Advice) != 1 || result.Advice[0].Title != "Обновить годовые планы" {
		t.Errorf("expected the generic annual-plan advice, got %+v", result.Advice)
	}
	if result.SavingPerMonth != 0 {
		t.Errorf("savingPerMonth = %v, want 0", result.SavingPerMonth)
	}
	if result.MonthlyBefore != result.MonthlyAfter {
		t.Errorf("before %v should equal after %v", result.MonthlyBefore, result.MonthlyAfter)
	}
}

func TestRuleBasedAnalysisOtherSegmentIgnored(t *testing.T) {
	subs := []models.Subscription{
		monthlySub("1", "Adobe Creative Cloud", 3299),
		monthlySub("2", "GitHub Copilot", 10),
	}

	result := RuleBasedAnalysis(subs)
	if len(result.Conflicts) != 0 {
		t.Errorf("other-segment services should never conflict: %+v", result.Conflicts)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	advisor := New(ai.New("https://api.openai.com/v1", "gpt-4o-mini", "", true))
	if _, err := advisor.Analyze(context.Background(), nil); err == nil {
		t.Error("expected an error for an empty subscription list")
	}
}

func TestAnalyzeMockModeUsesRules(t *testing.T) {
	advisor := New(ai.New("https://api.openai.com/v1", "gpt-4o-mini", "", true))

	subs := []models.Subscription{
		monthlySub("1", "Netflix Premium", 599),
		monthlySub("2", "Кинопоиск", 300),
	}

	result, err := advisor.Analyze(context.Background(), subs)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Conflicts) != 1 || result.SavingPerMonth != 599 {
		t.Errorf("mock mode should return the rule-based analysis: %+v", result)
	}
}

func TestAnalyzeNormalizesLLMResponse(t *testing.T) {
	content := `{
		"conflicts": [
			{"group": " Видео ", "items": ["Netflix", "", "Иви"], "reason": " дубли "},
			{"group": "", "items": ["x"], "reason": "no group"}
		],
		"advice": [
			{"title": " Отключить Иви ", "detail": " экономия 999 ", "savingPerMonth": 999},
			{"title": "", "detail": "dropped"}
		],
		"monthlyBefore": 1598,
		"monthlyAfter": 599,
		"savingPerMonth": 999
	}`
	_, client := llmStub(t, content)
	advisor := New(client)

	result, err := advisor.Analyze(context.Background(), []models.Subscription{
		monthlySub("1", "Netflix", 599),
		monthlySub("2", "Иви", 999),
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1 (malformed dropped)", len(result.Conflicts))
	}
	if result.Conflicts[0].Group != "Видео" || len(result.Conflicts[0].Items) != 2 {
		t.Errorf("conflict not normalized: %+v", result.Conflicts[0])
	}
	if len(result.Advice) != 1 || result.Advice[0].Title != "Отключить Иви" {
		t.Errorf("advice not normalized: %+v", result.Advice)
	}
	if result.MonthlyBefore != 1598 || result.MonthlyAfter != 599 || result.SavingPerMonth != 999 {
		t.Errorf("totals not carried: %+v", result)
	}
}

func TestAnalyzeFallsBackOnJunk(t *testing.T) {
	_, client := llmStub(t, "sorry, I cannot help with that")
	advisor := New(client)

	subs := []models.Subscription{
		monthlySub("1", "Netflix Premium", 599),
		monthlySub("2", "Кинопоиск", 300),
	}

	result, err := advisor.Analyze(context.Background(), subs)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Conflicts) != 1 || result.SavingPerMonth != 599 {
		t.Errorf("junk responses should fall back to the rule base: %+v", result)
	}
}

func TestAnalyzeFallsBackOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	advisor := New(ai.New(server.URL, "gpt-4o-mini", "key", false))
	result, err := advisor.Analyze(context.Background(), []models.Subscription{
		monthlySub("1", "Netflix Premium", 599),
		monthlySub("2", "Кинопоиск", 300),
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.MonthlyBefore != 899 {
		t.Errorf("fallback monthlyBefore = %v, want 899", result.MonthlyBefore)
	}
}

func TestAnalyzeFillsMissingTotals(t *testing.T) {
	_, client := llmStub(t, `{"conflicts": [], "advice": []}`)
	advisor := New(client)

	result, err := advisor.Analyze(context.Background(), []models.Subscription{
		monthlySub("1", "Netflix Premium", 599),
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.MonthlyBefore != 599 {
		t.Errorf("monthlyBefore should fall back to the estimate: %v", result.MonthlyBefore)
	}
	if result.MonthlyAfter != 598 {
		t.Errorf("monthlyAfter = %v, want estimate-1", result.MonthlyAfter)
	}
	if result.SavingPerMonth != 1 {
		t.Errorf("savingPerMonth = %v, want 1", result.SavingPerMonth)
	}
}
