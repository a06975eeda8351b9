// Package bytesize formats byte counts for people.
package bytesize

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Format renders n with binary prefixes, e.g. 1536 becomes "1.5 KiB".
// Negative values are treated as zero.
func Format(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

// Compact renders n in at most a few characters for narrow displays, e.g.
// 1536 becomes "1.5K" and 512 becomes "512B".
func Compact(n int64) string {
	s := Format(n)
	num, unit, ok := strings.Cut(s, " ")
	if !ok {
		return s
	}
	if unit == "B" {
		return num + "B"
	}
	return num + strings.TrimSuffix(unit, "iB")
}

// Percent returns part as a percentage of total, or 0 if total is not
// positive.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Parse reads a size such as "10 MiB", "1.5GB" or "512" into bytes.
func Parse(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
