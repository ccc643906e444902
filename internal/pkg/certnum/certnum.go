// Package certnum formats and parses leaving certificate numbers of the form
// LVC-{YYYY}{MM}-{NNNN}. Everything here is pure; persistence of the running
// sequence lives in the certificate store.
package certnum

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Prefix is the fixed leading segment of every certificate number.
const Prefix = "LVC"

// Period returns the YYYYMM segment for t.
func Period(t time.Time) string {
	return fmt.Sprintf("%04d%02d", t.Year(), int(t.Month()))
}

// PeriodPrefix returns "LVC-YYYYMM-", the shared prefix of all numbers allocated in t's month.
func PeriodPrefix(t time.Time) string {
	return Prefix + "-" + Period(t) + "-"
}

// Format renders seq under t's period. Sequences above 9999 keep growing in width.
func Format(t time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", PeriodPrefix(t), seq)
}

// ParseSequence extracts the numeric suffix of number.
// ok is false for an empty or malformed number.
func ParseSequence(number string) (seq int, ok bool) {
	if number == "" {
		return 0, false
	}
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Next returns the number that follows prev under now's period.
// An empty or malformed prev restarts the sequence at 0001.
func Next(prev string, now time.Time) string {
	seq, ok := ParseSequence(prev)
	if !ok {
		return Format(now, 1)
	}
	return Format(now, seq+1)
}
