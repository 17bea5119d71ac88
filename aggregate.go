package itemtext

import (
	"fmt"
	"strings"
)

// itemGroup collects the rows of one item in source order.
type itemGroup struct {
	id   string
	rows []RawRow
}

// Aggregate groups rows into one NormalizedRecord per item id.
//
// A row with a blank id belongs to the nearest preceding row with an id.
// Records come out in order of each id's first appearance; rows of an id
// that reappears later are merged into its first group.
//
// Within a group:
//   - ItemDescription is the first non-blank description, or the first row's
//     cell when all are blank.
//   - Question joins the non-blank question cells with "\n" when the group
//     has more than one row or no description; otherwise it is empty.
//   - Answer is the Options cell of the last row flagged correct, or empty.
//   - Explanation is the first non-blank explanation.
//
// A blank id on the first row fails with ErrAggregation and no records.
func Aggregate(rows []RawRow) ([]NormalizedRecord, error) {
	groups, err := groupRows(rows)
	if err != nil {
		return nil, err
	}

	records := make([]NormalizedRecord, 0, len(groups))
	for _, g := range groups {
		if isBlank(g.id) {
			return nil, fmt.Errorf("%w: group with blank item id", ErrAggregation)
		}
		records = append(records, g.record())
	}
	return records, nil
}

// groupRows resolves carried-forward ids and buckets rows by id.
func groupRows(rows []RawRow) ([]*itemGroup, error) {
	var (
		groups  []*itemGroup
		byID    = make(map[string]*itemGroup)
		current string
	)
	for i, row := range rows {
		id := strings.TrimSpace(row.ItemID)
		if id == "" {
			if current == "" {
				return nil, fmt.Errorf("%w: row %d has no item id and no preceding row to inherit one from", ErrAggregation, i)
			}
			id = current
		}
		current = id

		g, ok := byID[id]
		if !ok {
			g = &itemGroup{id: id}
			byID[id] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}
	return groups, nil
}

func (g *itemGroup) record() NormalizedRecord {
	desc := g.description()
	return NormalizedRecord{
		ItemID:          g.id,
		ItemDescription: desc,
		Question:        g.question(desc),
		Answer:          g.answer(),
		Explanation:     g.explanation(),
	}
}

func (g *itemGroup) description() string {
	for _, r := range g.rows {
		if !isBlank(r.ItemDescription) {
			return r.ItemDescription
		}
	}
	return g.rows[0].ItemDescription
}

func (g *itemGroup) question(desc string) string {
	if len(g.rows) <= 1 && !isBlank(desc) {
		return ""
	}
	var parts []string
	for _, r := range g.rows {
		if !isBlank(r.QuestionContent) {
			parts = append(parts, r.QuestionContent)
		}
	}
	return strings.Join(parts, "\n")
}

// answer keeps the last flagged row when several are marked correct.
func (g *itemGroup) answer() string {
	answer := ""
	for _, r := range g.rows {
		if r.CorrectOption {
			answer = r.Options
		}
	}
	return answer
}

func (g *itemGroup) explanation() string {
	for _, r := range g.rows {
		if !isBlank(r.Explanation) {
			return r.Explanation
		}
	}
	return ""
}
