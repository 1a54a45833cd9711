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

const chatSystemPrompt = `Ты — опытный финансовый консультант по подпискам.
- Всегда опирайся на ВЕСЬ диалог и отвечай на текущий запрос без повторяющихся шаблонов.
- Даже если пользователь не дал точных цен, дай 2–3 конкретных рекомендации: какие подписки отключить или заменить, на какие пакеты/годовые планы перейти, где есть аналоги (Netflix ↔️ Кинопоиск ↔️ Иви, Spotify ↔️ Яндекс Музыка и т.д.).
- Когда пользователь перечисляет сервисы, группируй их (Видео, Музыка, Пакеты, Банковские привилегии и т.п.) и объясняй, какой оставить, какой отключить, сколько примерно сэкономит.
- Формат ответа: короткое введение + нумерованные советы с экономией в ₽/мес или %, + финальный call-to-action.
- Если информации ноль, предложи типовые сценарии экономии и попроси данные максимально конкретно.`

// maxChatMessages bounds how much history is sent upstream
const maxChatMessages = 12

type knownService struct {
	name     string
	segment  string
	price    float64
	keywords []string
}

// Well-known services with typical monthly prices in rubles, used to build
// offline replies from free-form chat text.
var serviceLibrary = []knownService{
	{"Netflix", SegmentStreaming, 599, []string{"netflix"}},
	{"Иви", SegmentStreaming, 999, []string{"иви", "ivi"}},
	{"Кинопоиск", SegmentStreaming, 300, []string{"кинопоиск", "kinopoisk"}},
	{"Okko", SegmentStreaming, 549, []string{"okko"}},
	{"Амедиатека", SegmentStreaming, 599, []string{"amedi", "amediateka"}},
	{"Megogo", SegmentStreaming, 399, []string{"megogo"}},
	{"T-Премиум", SegmentStreaming, 999, []string{"t-премиум", "t премиум", "t-premium"}},
	{"Wink", SegmentStreaming, 399, []string{"wink"}},
	{"Spotify", SegmentMusic, 269, []string{"spotify"}},
	{"Яндекс Музыка", SegmentMusic, 239, []string{"яндекс", "yandex music", "yandex музыка"}},
	{"Apple Music", SegmentMusic, 199, []string{"apple music"}},
	{"СберПрайм", SegmentBundle, 299, []string{"сберпрайм", "sber", "sberprime"}},
	{"Яндекс Плюс", SegmentBundle, 299, []string{"яндекс плюс", "yandex plus", "plus"}},
}

var defaultStrategies = []string{
	"Если оплачиваешь два видеосервиса (например, Netflix и Иви) — оставь тот, где больше премьер, а второй отключи → экономия 500–700 ₽/мес.",
	"СберПрайм или Яндекс Плюс обычно включают Кинопоиск + музыку + доставка. Они дешевле, чем оплачивать всё раздельно, поэтому стоит перейти на пакет.",
	"Годовые планы Adobe, Spotify, YouTube Premium дают 15–20% скидки. Оплати с кэшбэком банковской карты — ещё −5%.",
}

// SanitizeMessages keeps the last maxChatMessages well-formed turns: valid
// roles only, trimmed, empties dropped.
func SanitizeMessages(messages []models.ChatMessage) []models.ChatMessage {
	if len(messages) > maxChatMessages {
		messages = messages[len(messages)-maxChatMessages:]
	}

	sanitized := make([]models.ChatMessage, 0, len(messages))
	for _, message := range messages {
		if message.Role != "user" && message.Role != "assistant" {
			continue
		}
		content := strings.TrimSpace(message.Content)
		if content == "" {
			continue
		}
		sanitized = append(sanitized, models.ChatMessage{Role: message.Role, Content: content})
	}
	return sanitized
}

// Chat answers one turn of the advisor conversation. The history must end
// with a user message. Mock mode and upstream failures fall back to the
// keyword-library reply.
func (a *Advisor) Chat(ctx context.Context, messages []models.ChatMessage) (string, error) {
	sanitized := SanitizeMessages(messages)
	if len(sanitized) == 0 || sanitized[len(sanitized)-1].Role != "user" {
		return "", fmt.Errorf("provide at least one user message")
	}

	if a.llm.Mock() {
		return offlineChatReply(sanitized), nil
	}

	raw, err := a.llm.Call(ctx, ai.Options{
		System: chatSystemPrompt,
		Prompt: buildChatPrompt(sanitized),
	})
	if err != nil {
		log.Printf("advisor: chat LLM call failed, using offline reply: %v", err)
		return offlineChatReply(sanitized), nil
	}

	reply := strings.TrimSpace(raw)

	// Some models wrap the answer in a JSON object even without being asked
	var wrapped struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Reply != "" {
		reply = wrapped.Reply
	}

	if reply == "" {
		reply = "Я не получил ответа от модели. Попробуй сформулировать вопрос иначе."
	}
	return reply, nil
}

func buildChatPrompt(messages []models.ChatMessage) string {
	var sb strings.Builder
	for _, message := range messages {
		speaker := "Пользователь"
		if message.Role == "assistant" {
			speaker = "Агент"
		}
		fmt.Fprintf(&sb, "%s: %s\n", speaker, message.Content)
	}
	sb.WriteString("\nОтветь как эксперт по подпискам: дай конкретные советы, цифры экономии, варианты альтернатив. Если нет данных — попроси уточнить.")
	return sb.String()
}

// offlineChatReply builds an answer from services mentioned in the history
func offlineChatReply(messages []models.ChatMessage) string {
	services := extractServices(messages)
	suggestions := optimizationSummary(services)

	intro := "Вот что могу предложить по оптимизации подписок:"
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			intro = fmt.Sprintf("Отвечаю на «%s».", messages[i].Content)
			break
		}
	}

	var lines []string
	switch {
	case len(services) > 0 && len(suggestions) > 0:
		lines = append(lines, intro, fmt.Sprintf("Сейчас у тебя фигурируют: %s.", strings.Join(serviceNames(services), ", ")))
		for i, suggestion := range suggestions {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, suggestion))
		}
		lines = append(lines, "Если добавишь стоимость или новые сервисы — посчитаю точную экономию.")

	case len(services) > 0:
		lines = append(lines, intro, fmt.Sprintf("Уже вижу %s.", strings.Join(serviceNames(services), ", ")))
		for i, strategy := range defaultStrategies {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, strategy))
		}
		lines = append(lines, "Напиши стоимость каждой подписки — построю персональный план экономии.")

	default:
		lines = append(lines, intro)
		for i, strategy := range defaultStrategies {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, strategy))
		}
		lines = append(lines, "Перечисли свои сервисы и цены — адаптирую рекомендации под тебя.")
	}

	return strings.Join(lines, "\n")
}

// extractServices finds known services mentioned in user turns, first
// mention order preserved.
func extractServices(messages []models.ChatMessage) []knownService {
	var found []knownService
	seen := make(map[string]bool)

	for _, message := range messages {
		if message.Role != "user" {
			continue
		}
		text := strings.ToLower(message.Content)
		for _, service := range serviceLibrary {
			if seen[service.name] || !containsAny(text, service.keywords) {
				continue
			}
			seen[service.name] = true
			found = append(found, service)
		}
	}
	return found
}

func serviceNames(services []knownService) []string {
	names := make([]string, 0, len(services))
	for _, service := range services {
		names = append(names, service.name)
	}
	return names
}

func optimizationSummary(services []knownService) []string {
	var segmentOrder []string
	grouped := make(map[string][]knownService)
	for _, service := range services {
		if _, ok := grouped[service.segment]; !ok {
			segmentOrder = append(segmentOrder, service.segment)
		}
		grouped[service.segment] = append(grouped[service.segment], service)
	}

	var suggestions []string
	for _, segment := range segmentOrder {
		items := grouped[segment]
		if len(items) < 2 {
			if len(items) == 1 && items[0].price > 0 {
				suggestions = append(suggestions, fmt.Sprintf(
					"%s: %s стоит ≈%s ₽/мес. Сравни с годовым тарифом — можно сэкономить 15–20%%.",
					segment, items[0].name, models.FormatMoney(items[0].price)))
			}
			continue
		}

		ordered := make([]knownService, len(items))
		copy(ordered, items)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].price < ordered[j].price })

		keep := ordered[0]
		redundant := ordered[1:]
		var saving float64
		names := make([]string, 0, len(redundant))
		for _, item := range redundant {
			saving += item.price
			names = append(names, item.name)
		}

		suggestions = append(suggestions, fmt.Sprintf(
			"%s: оставь %s, отключи %s → экономия примерно %s ₽/мес.",
			segment, keep.name, strings.Join(names, ", "), models.FormatMoney(saving)))
	}

	return suggestions
}
