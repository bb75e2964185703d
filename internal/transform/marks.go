package transform

import (
	"regexp"
	"strings"
)

var markLabels = []string{
	"Konformitätszeichen",
	"Genehmigungszeichen",
	"Genehmigungsnummer",
}

var labelledMark = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(markLabels))
	for _, l := range markLabels {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(l)+`\s*[:\-]?\s*([^\n]+?)(?:\s{3,}|\n?\z)`))
	}
	return out
}()

var bareMark = regexp.MustCompile(`\b([eE]\d+[^\n]*?)(?:\s{3,}|\n?\z)`)

// ExtractApprovalMarks pulls EC approval marks out of a free-text remark.
// Labelled marks win; otherwise anything that looks like "e1*..." longer
// than four characters is taken. Results are de-duplicated and joined with
// ", ". An empty string means nothing was found.
func ExtractApprovalMarks(text string) string {
	var found []string
	for _, re := range labelledMark {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if s := strings.TrimSpace(m[1]); s != "" {
				found = append(found, s)
			}
		}
	}
	if len(found) == 0 {
		for _, m := range bareMark.FindAllStringSubmatch(text, -1) {
			if s := strings.TrimSpace(m[1]); len(s) > 4 {
				found = append(found, s)
			}
		}
	}

	seen := make(map[string]bool, len(found))
	unique := found[:0]
	for _, s := range found {
		if seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	return strings.Join(unique, ", ")
}
