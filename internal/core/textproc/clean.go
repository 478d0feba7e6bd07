package textproc

import (
	"regexp"
	"strings"
)

var (
	hyphenBreakRe = regexp.MustCompile(`([a-zA-Z]+)-\n([a-zA-Z]+)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)

	// Ligature codepoints that PDF extractors leave behind.
	ligatureReplacer = strings.NewReplacer(
		"ﬀ", "ff",
		"ﬁ", "fi",
		"ﬂ", "fl",
		"ﬃ", "ffi",
		"ﬄ", "ffl",
		"ﬅ", "st",
		"ﬆ", "st",
	)
)

// CleanText normalizes raw extracted page text before sentence splitting:
// words hyphen-broken across a line break are merged, ligature glyphs are
// expanded to their ASCII letter pairs, NUL and other non-printing control
// bytes are dropped, and whitespace runs collapse to single spaces.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	s = stripControls(s)
	s = hyphenBreakRe.ReplaceAllString(s, "$1$2")
	s = ligatureReplacer.Replace(s)
	// Some extractors double the expanded ligature ("fifi" for "fi").
	s = strings.ReplaceAll(s, "fifi", "fi")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripControls removes NUL and control characters except common whitespace.
func stripControls(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r < 0x20 && r != '\n' && r != '\r' && r != '\t' }) {
		return s
	}
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return string(r)
}
