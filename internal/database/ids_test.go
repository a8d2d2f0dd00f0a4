package database

import "testing"

type fakeRecord struct {
	id string
}

func (f *fakeRecord) RecordID() string      { return f.id }
func (f *fakeRecord) SetRecordID(id string) { f.id = id }

func fakeRecords(ids ...string) []*fakeRecord {
	records := make([]*fakeRecord, len(ids))
	for i, id := range ids {
		records[i] = &fakeRecord{id: id}
	}
	return records
}

func TestFormatID(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "01"},
		{9, "09"},
		{10, "10"},
		{99, "99"},
		{100, "100"},
		{1234, "1234"},
	}
	for _, tt := range tests {
		if got := FormatID(tt.n); got != tt.want {
			t.Errorf("FormatID(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty collection", nil, "01"},
		{"dense sequence", []string{"01", "02", "03"}, "04"},
		{"gaps left by deletions", []string{"01", "03", "07"}, "08"},
		{"crosses two digits", []string{"99"}, "100"},
		{"beyond two digits", []string{"100", "101"}, "102"},
		{"non-numeric ids ignored", []string{"abc", "02", "x9"}, "03"},
		{"only non-numeric ids", []string{"abc", "tmp"}, "01"},
		{"unordered", []string{"05", "02", "11"}, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextID(fakeRecords(tt.ids...)); got != tt.want {
				t.Errorf("NextID(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}
