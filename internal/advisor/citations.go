// internal/advisor/citations.go
package advisor

import (
	"regexp"
	"strings"
)

// courseCodePattern matches code-shaped tokens like "CPSC 340" or "CPSC340".
var courseCodePattern = regexp.MustCompile(`\b[A-Z]{2,4}\s?\d{3}[A-Z]?\b`)

// VerifyCitations checks the generated answer against the retrieved course
// codes. The grounding prompt instructs the model to cite only supplied
// courses, but nothing guarantees it complied: cited holds the retrieved
// codes that actually appear in the answer, invented the code-shaped tokens
// that match nothing retrieved.
func VerifyCitations(answer string, retrieved []string) (cited, invented []string) {
	known := make(map[string]string, len(retrieved))
	for _, code := range retrieved {
		known[normalizeCode(code)] = code
	}

	seenCited := make(map[string]struct{})
	seenInvented := make(map[string]struct{})
	for _, token := range courseCodePattern.FindAllString(answer, -1) {
		key := normalizeCode(token)
		if code, ok := known[key]; ok {
			if _, dup := seenCited[key]; !dup {
				seenCited[key] = struct{}{}
				cited = append(cited, code)
			}
			continue
		}
		if _, dup := seenInvented[key]; !dup {
			seenInvented[key] = struct{}{}
			invented = append(invented, token)
		}
	}

	return cited, invented
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}
