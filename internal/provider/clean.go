package provider

import "strings"

const fence = "```"

// Clean strips one leading markdown code fence (with an optional
// alphanumeric language tag) and one trailing fence from model output,
// trimming surrounding whitespace. Input without fences is only trimmed.
func Clean(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		i := 0
		for i < len(s) && isAlnum(s[i]) {
			i++
		}
		s = s[i:]
	}
	if strings.HasSuffix(s, fence) {
		s = s[:len(s)-len(fence)]
	}
	return strings.TrimSpace(s)
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
