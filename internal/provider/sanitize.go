package provider

import "strings"

// sanitizeText strips control characters and null bytes from backend output
// and truncates it to maxLen bytes on a rune boundary. Newlines and tabs are
// kept since guidance text is multi-line.
func sanitizeText(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == 0 {
			continue
		}
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		cut := maxLen
		for cut > 0 && !isRuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
