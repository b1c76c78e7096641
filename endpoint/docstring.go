package endpoint

import "strings"

// splitDoc turns handler documentation into an operation summary and
// description. A single line is the summary. Otherwise the first line is
// the summary and every line but the first and the last, trimmed and
// newline terminated, makes up the description.
func splitDoc(doc string) (summary, description string) {
	if doc == "" {
		return "", ""
	}
	if !strings.Contains(doc, "\n") {
		return doc, ""
	}

	lines := strings.Split(doc, "\n")
	summary = strings.TrimSpace(lines[0])

	var b strings.Builder
	for _, line := range lines[1 : len(lines)-1] {
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	return summary, b.String()
}
