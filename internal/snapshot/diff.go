package snapshot

import (
	"encoding/json"

	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/nsf/jsondiff"
)

// Diff compares the tables of two catalogs; creation time is ignored.
// same is true when both describe identical schemas. report is a
// human-readable rendering of the differences.
func Diff(old, cur *Catalog, colored bool) (same bool, report string, err error) {
	a, err := json.Marshal(old.Tables)
	if err != nil {
		return false, "", errs.Wrap(errs.ErrKindInvalidInput, "failed to encode catalog", err)
	}
	b, err := json.Marshal(cur.Tables)
	if err != nil {
		return false, "", errs.Wrap(errs.ErrKindInvalidInput, "failed to encode catalog", err)
	}

	opts := jsondiff.DefaultJSONOptions()
	if colored {
		opts = jsondiff.DefaultConsoleOptions()
	}
	opts.SkipMatches = true

	diff, report := jsondiff.Compare(a, b, &opts)
	return diff == jsondiff.FullMatch, report, nil
}
