package database

import (
	"sort"
	"strconv"
)

// Renumber compacts a collection's IDs into a dense sequence starting at 1,
// mutating the records in place. Protected IDs keep their value and do not
// consume a counter slot; the counter skips over any candidate value that
// equals a protected ID. Records with non-numeric IDs are left untouched.
// The returned mapping covers every record, including identity entries for
// protected and non-numeric IDs. Callers persist the collection afterwards.
func Renumber[R Record](records []R, protected map[string]bool) map[string]string {
	sorted := make([]R, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aerr := strconv.Atoi(sorted[i].RecordID())
		b, berr := strconv.Atoi(sorted[j].RecordID())
		if aerr != nil || berr != nil {
			// Non-numeric IDs sort last and keep their place.
			return berr != nil && aerr == nil
		}
		return a < b
	})

	mapping := make(map[string]string, len(sorted))
	counter := 1
	for _, r := range sorted {
		old := r.RecordID()
		if protected[old] {
			mapping[old] = old
			continue
		}
		if _, err := strconv.Atoi(old); err != nil {
			mapping[old] = old
			continue
		}
		for protected[FormatID(counter)] {
			counter++
		}
		id := FormatID(counter)
		r.SetRecordID(id)
		mapping[old] = id
		counter++
	}
	return mapping
}

// Remap resolves an ID through a renumbering mapping, passing unmapped IDs
// through unchanged.
func Remap(mapping map[string]string, id string) string {
	if mapped, ok := mapping[id]; ok {
		return mapped
	}
	return id
}
