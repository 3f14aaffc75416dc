package fetch

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Key derives a deterministic cache key from a logical query: dataset
// identifier, drill path, and time range.
//
// String segments are NFC-normalized so that canonically equivalent Unicode
// spellings (composed vs decomposed accents) address the same entry, and
// joined with a unit separator so path segments cannot collide with the
// dataset name or each other.
func Key(dataset string, path []string, from, to time.Time) string {
	var b strings.Builder
	b.WriteString(norm.NFC.String(dataset))
	for _, seg := range path {
		b.WriteByte(0x1f)
		b.WriteString(norm.NFC.String(seg))
	}
	b.WriteByte(0x1f)
	b.WriteString(strconv.FormatInt(from.UTC().Unix(), 10))
	b.WriteByte(0x1f)
	b.WriteString(strconv.FormatInt(to.UTC().Unix(), 10))
	return b.String()
}
