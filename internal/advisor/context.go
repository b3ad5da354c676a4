// internal/advisor/context.go
package advisor

import (
	"fmt"
	"strings"

	"github.com/jclermont/advisor/internal/util"
	"github.com/jclermont/advisor/internal/vecindex"
)

// NoMatchMarker is the context emitted for an empty retrieval. The generation
// step relies on it to distinguish "no data" from a formatting bug, so it is
// never the empty string.
const NoMatchMarker = "No matching courses found in the catalog."

// maxExcerptRunes bounds each course description inside the context block.
const maxExcerptRunes = 360

// BuildContext renders retrieved courses into the context block sent to the
// generation step. Items appear in retrieval order and each rendering is
// self-contained enough to be cited by course code alone.
func BuildContext(hits []vecindex.Hit) string {
	if len(hits) == 0 {
		return NoMatchMarker
	}

	var b strings.Builder
	for i, hit := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		r := hit.Record
		fmt.Fprintf(&b, "Course %d: %s - %s\n", i+1, r.Code, r.Title)
		fmt.Fprintf(&b, "Department: %s | Level: %s | Credits: %d\n", r.Department, r.Level, r.Credits)
		fmt.Fprintf(&b, "Prerequisites: %s\n", r.PrerequisiteList())
		fmt.Fprintf(&b, "Description: %s", util.TruncateRunes(util.CollapseWhitespace(r.Description), maxExcerptRunes))
	}

	return b.String()
}
