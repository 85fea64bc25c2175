package emoji

import "sync/atomic"

// emojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":       {"❌", "[ERR]"},
	"warning":     {"⚠️", "[WRN]"},
	"info":        {"ℹ️", "[INF]"},
	"success":     {"✅", "[OK]"},
	"positive":    {"🔴", "[POS]"},
	"negative":    {"🟢", "[NEG]"},
	"image":       {"🩻", "[IMG]"},
	"upload":      {"📤", "[UP]"},
	"analyze":     {"🔍", "[ANL]"},
	"report":      {"📄", "[RPT]"},
	"statistics":  {"📊", "[STATS]"},
	"recommend":   {"📋", "[REC]"},
	"disclaimer":  {"⚕️", "[!]"},
	"watch":       {"👀", "[WATCH]"},
	"health":      {"💓", "[HLTH]"},
	"help":        {"❓", "[?]"},
	"reset":       {"🔄", "[RST]"},
	"door":        {"🚪", "[EXIT]"},
	"lungs":       {"🫁", "[LUNG]"},
	"hourglass":   {"⏳", "[...]"},
	"unavailable": {"🔌", "[OFF]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// ForLabel returns the marker for a positive or negative finding
func ForLabel(positive bool) string {
	if positive {
		return GetEmoji("positive")
	}
	return GetEmoji("negative")
}
