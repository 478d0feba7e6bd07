package textproc

import (
	"regexp"
	"strings"
)

// sentenceRe matches runs of text up to and including a terminator. The
// trailing alternative catches a final fragment without one.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+[)"']?|[^.!?]+$`)

// SegmentSentences splits cleaned text into ordered, non-empty, trimmed
// sentences. Text with no sentence terminator comes back as a single
// sentence.
func SegmentSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	matches := sentenceRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
