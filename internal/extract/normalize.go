package extract

import (
	"strings"
	"unicode"
)

// Punctuation the recognition engine tends to pad with spurious spaces on
// dense scripts. Closers reject a space before them, openers after them.
const (
	cjkClosers = "。、，．！？）」』】〉》〕"
	cjkOpeners = "（「『【〈《〔"
)

// Normalize post-processes recognized or extracted text: collapses runs of
// whitespace to a single space, trims each line, drops lines that are empty
// after trimming, and removes the spaces recognition engines insert between
// adjacent logographic characters and around their punctuation. Pure,
// deterministic, and idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lines := splitLines(text)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = collapseWhitespace(line)
		if line == "" {
			continue
		}
		out = append(out, fixScriptSpacing(line))
	}
	return strings.Join(out, "\n")
}

// CleanLines trims every line and drops the empty ones without touching
// interior spacing. Used for embedded text, where interior whitespace is the
// document's own layout rather than a recognition artifact.
func CleanLines(text string) string {
	if text == "" {
		return ""
	}

	lines := splitLines(text)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// collapseWhitespace reduces every whitespace run to one space and trims.
func collapseWhitespace(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// fixScriptSpacing drops spaces at character-class boundaries: between two
// logographic runes, after a CJK opening bracket, and before CJK punctuation.
// Boundary matching keeps Latin segments of mixed-script lines intact.
func fixScriptSpacing(line string) string {
	runes := []rune(line)
	var b strings.Builder
	b.Grow(len(line))

	var prev rune
	hasPrev := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == ' ' && i+1 < len(runes) {
			next := runes[i+1]
			switch {
			case strings.ContainsRune(cjkClosers, next),
				hasPrev && strings.ContainsRune(cjkOpeners, prev),
				hasPrev && isLogographic(prev) && isLogographic(next):
				continue
			}
		}
		b.WriteRune(r)
		prev = r
		hasPrev = true
	}

	return strings.TrimSpace(b.String())
}

// isLogographic reports whether the rune belongs to a script with no natural
// word spacing: Han, Hiragana, Katakana, or the CJK symbols and punctuation
// block.
func isLogographic(r rune) bool {
	if r >= 0x3000 && r <= 0x303F {
		return true
	}
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}
