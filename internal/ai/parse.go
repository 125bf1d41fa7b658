package ai

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	summaryLabel = regexp.MustCompile(`(?i)^\**\s*(SUMMARY|الملخص|ملخص)\s*\**\s*[:：]\s*\**\s*`)
	otherLabel   = regexp.MustCompile(`^\**\s*[A-Z][A-Z ]{2,}\s*\**\s*:`)
)

// parseSummary extracts the SUMMARY block from a labelled model answer.
// Continuation lines are joined until another label starts. An unlabelled
// answer is used as-is.
func parseSummary(response string) (string, error) {
	var b strings.Builder
	inSummary, found := false, false

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if summaryLabel.MatchString(line) {
			inSummary, found = true, true
			line = strings.TrimSpace(summaryLabel.ReplaceAllString(line, ""))
		} else if otherLabel.MatchString(line) {
			inSummary = false
			continue
		}
		if inSummary && line != "" {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(line)
		}
	}

	summary := strings.TrimSpace(b.String())
	if !found {
		summary = strings.Join(strings.Fields(response), " ")
	}
	if summary == "" {
		return "", fmt.Errorf("could not parse summary from response")
	}
	return summary, nil
}
