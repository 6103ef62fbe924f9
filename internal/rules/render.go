package rules

import "strings"

// Render fills every {key} token in pattern from vars. Tokens without a
// matching variable stay in the output verbatim, which keeps a misconfigured
// template debuggable instead of silently blanking fields. The scan is a
// single pass over the pattern: substituted values are never re-scanned, so
// a value containing braces cannot trigger further substitution.
func Render(pattern string, vars map[string]string) string {
	if pattern == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(pattern))

	for {
		open := strings.IndexByte(pattern, '{')
		if open < 0 {
			b.WriteString(pattern)
			return b.String()
		}
		closing := strings.IndexByte(pattern[open:], '}')
		if closing < 0 {
			b.WriteString(pattern)
			return b.String()
		}
		closing += open

		b.WriteString(pattern[:open])
		key := pattern[open+1 : closing]
		if value, ok := vars[key]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(pattern[open : closing+1])
		}
		pattern = pattern[closing+1:]
	}
}
