package normalize

import (
	"strings"

	"github.com/odyssey-erp/glreport/internal/ledger/schema"
)

// postingSemantics says how the resolved posting-indicator column is read.
type postingSemantics int

const (
	// no indicator column: everything posts
	postingAbsent postingSemantics = iota
	// column flags non-posting rows directly; null means posting
	postingDirect
	// column flags posting rows; stored flag is negated, null means posting
	postingInverted
)

var nonPostingMarkers = []string{"nonposting", "non_posting", "non-posting", "non posting"}

func classifyPosting(column string) postingSemantics {
	if column == "" {
		return postingAbsent
	}
	name := strings.ToLower(column)
	for _, marker := range nonPostingMarkers {
		if strings.Contains(name, marker) {
			return postingDirect
		}
	}
	if strings.Contains(name, "posting") {
		return postingInverted
	}
	return postingDirect
}

func (p postingSemantics) nonPosting(cell string) bool {
	switch p {
	case postingDirect:
		v, ok := schema.ParseBool(cell)
		return ok && v
	case postingInverted:
		v, ok := schema.ParseBool(cell)
		if !ok {
			return false
		}
		return !v
	default:
		return false
	}
}
