package database

import (
	"fmt"
	"strconv"
)

// FormatID renders a numeric ID as a zero-padded decimal string with a
// two-digit minimum ("01", "02", ..., "100").
func FormatID(n int) string {
	return fmt.Sprintf("%02d", n)
}

// NextID returns the next sequential ID for a collection: highest existing
// numeric ID plus one. Non-numeric IDs are ignored.
func NextID[R Record](records []R) string {
	max := 0
	for _, r := range records {
		n, err := strconv.Atoi(r.RecordID())
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return FormatID(max + 1)
}
