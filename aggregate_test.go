package itemtext

import (
	"errors"
	"testing"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows []RawRow
		want []NormalizedRecord
	}{
		{
			name: "multi-row item selects question content and flagged answer",
			rows: []RawRow{
				{ItemID: "Q1", ItemDescription: "What is 2+2?", Options: "3"},
				{ItemID: "Q1", QuestionContent: "2+2=?", Options: "4", CorrectOption: true},
			},
			want: []NormalizedRecord{
				{ItemID: "Q1", ItemDescription: "What is 2+2?", Question: "2+2=?", Answer: "4"},
			},
		},
		{
			name: "single row with description has empty question",
			rows: []RawRow{
				{ItemID: "Q2", ItemDescription: "3+3=?", Options: "6", CorrectOption: true},
			},
			want: []NormalizedRecord{
				{ItemID: "Q2", ItemDescription: "3+3=?", Answer: "6"},
			},
		},
		{
			name: "single row without description uses question content",
			rows: []RawRow{
				{ItemID: "Q3", ItemDescription: "  ", QuestionContent: "5-2=?", Options: "3", CorrectOption: true},
			},
			want: []NormalizedRecord{
				{ItemID: "Q3", ItemDescription: "  ", Question: "5-2=?", Answer: "3"},
			},
		},
		{
			name: "blank ids carry forward",
			rows: []RawRow{
				{ItemID: "A", ItemDescription: "first"},
				{ItemID: "", QuestionContent: "a1", Options: "x", CorrectOption: true},
				{ItemID: "B", ItemDescription: "second", Options: "y", CorrectOption: true},
				{ItemID: "  ", QuestionContent: "b1"},
			},
			want: []NormalizedRecord{
				{ItemID: "A", ItemDescription: "first", Question: "a1", Answer: "x"},
				{ItemID: "B", ItemDescription: "second", Question: "b1", Answer: "y"},
			},
		},
		{
			name: "last correct flag wins",
			rows: []RawRow{
				{ItemID: "Q4", ItemDescription: "pick", Options: "a", CorrectOption: true},
				{ItemID: "Q4", Options: "b", CorrectOption: true},
				{ItemID: "Q4", Options: "c"},
			},
			want: []NormalizedRecord{
				{ItemID: "Q4", ItemDescription: "pick", Answer: "b"},
			},
		},
		{
			name: "no correct flag gives empty answer",
			rows: []RawRow{
				{ItemID: "Q5", ItemDescription: "d", Options: "a"},
				{ItemID: "Q5", Options: "b"},
			},
			want: []NormalizedRecord{
				{ItemID: "Q5", ItemDescription: "d"},
			},
		},
		{
			name: "description taken from later row when first is blank",
			rows: []RawRow{
				{ItemID: "Q6", QuestionContent: "q1"},
				{ItemID: "Q6", ItemDescription: "late desc", QuestionContent: "q2"},
			},
			want: []NormalizedRecord{
				{ItemID: "Q6", ItemDescription: "late desc", Question: "q1\nq2"},
			},
		},
		{
			name: "explanation is first non-blank",
			rows: []RawRow{
				{ItemID: "Q7", ItemDescription: "d"},
				{ItemID: "Q7", Explanation: "because"},
				{ItemID: "Q7", Explanation: "ignored"},
			},
			want: []NormalizedRecord{
				{ItemID: "Q7", ItemDescription: "d", Explanation: "because"},
			},
		},
		{
			name: "reappearing id merges into first group",
			rows: []RawRow{
				{ItemID: "X", ItemDescription: "x", QuestionContent: "x1"},
				{ItemID: "Y", ItemDescription: "y"},
				{ItemID: "X", QuestionContent: "x2"},
			},
			want: []NormalizedRecord{
				{ItemID: "X", ItemDescription: "x", Question: "x1\nx2"},
				{ItemID: "Y", ItemDescription: "y"},
			},
		},
		{
			name: "ids are trimmed",
			rows: []RawRow{
				{ItemID: " Q8 ", ItemDescription: "d"},
				{ItemID: "Q8", QuestionContent: "q"},
			},
			want: []NormalizedRecord{
				{ItemID: "Q8", ItemDescription: "d", Question: "q"},
			},
		},
		{
			name: "no rows",
			rows: nil,
			want: []NormalizedRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Aggregate(tt.rows)
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Aggregate() returned %d records, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("record %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAggregate_LeadingBlankID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows []RawRow
	}{
		{name: "empty", rows: []RawRow{{ItemID: "", ItemDescription: "orphan"}, {ItemID: "Q1"}}},
		{name: "whitespace", rows: []RawRow{{ItemID: " \t"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Aggregate(tt.rows)
			if !errors.Is(err, ErrAggregation) {
				t.Errorf("Aggregate() error = %v, want %v", err, ErrAggregation)
			}
			if got != nil {
				t.Errorf("Aggregate() = %+v, want no partial output", got)
			}
		})
	}
}

func TestAggregate_NonEmptyIDs(t *testing.T) {
	t.Parallel()

	rows := []RawRow{
		{ItemID: "a"}, {}, {ItemID: " "}, {ItemID: "b"}, {}, {ItemID: "c"}, {ItemID: "a"},
	}
	got, err := Aggregate(rows)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	seen := make(map[string]bool)
	for _, rec := range got {
		if rec.ItemID == "" {
			t.Error("emitted record with empty item id")
		}
		if seen[rec.ItemID] {
			t.Errorf("item id %q emitted twice", rec.ItemID)
		}
		seen[rec.ItemID] = true
	}
	if len(got) != 3 {
		t.Errorf("Aggregate() returned %d records, want 3", len(got))
	}
}
