package advisor

import "strings"

// Segment names used for grouping overlapping services
const (
	SegmentStreaming = "Видео"
	SegmentMusic     = "Музыка"
	SegmentBundle    = "Пакеты"
	SegmentOther     = "Прочее"
)

// Streaming service keywords (lowercase)
var StreamingKeywords = []string{
	"netflix", "иви", "ivi", "кино", "okko",
	"amediateka", "amedia", "hbo", "t-", "t премиум",
	"wink", "start", "megogo", "apple tv",
}

// Music service keywords (lowercase)
var MusicKeywords = []string{
	"spotify", "яндекс", "yandex music", "apple music",
	"deezer", "boom", "sound",
}

// Bundle and bank-perk keywords (lowercase)
var BundleKeywords = []string{
	"сберпрайм", "yandex plus", "яндекс плюс",
	"прайм", "тинькофф", "tinkoff",
}

// classifySegment assigns a subscription name to a service segment.
// Streaming keywords win over music, music over bundles.
func classifySegment(name string) string {
	lower := strings.ToLower(name)

	if containsAny(lower, StreamingKeywords) {
		return SegmentStreaming
	}
	if containsAny(lower, MusicKeywords) {
		return SegmentMusic
	}
	if containsAny(lower, BundleKeywords) {
		return SegmentBundle
	}
	return SegmentOther
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
