package importer

import (
	"testing"
	"time"
)

func TestDeadlineInBusinessDays(t *testing.T) {
	// 2026-08-28 is a Friday.
	friday := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		from time.Time
		days int
		want time.Time
	}{
		{
			name: "five days from friday lands on next friday",
			from: friday,
			days: 5,
			want: time.Date(2026, 9, 4, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "one day from friday skips the weekend",
			from: friday,
			days: 1,
			want: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday start counts from monday",
			from: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
			days: 1,
			want: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "zero days is the start date",
			from: friday,
			days: 0,
			want: friday,
		},
		{
			name: "ten days spans two weekends",
			from: friday,
			days: 10,
			want: time.Date(2026, 9, 11, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeadlineInBusinessDays(tt.from, tt.days)
			if !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
