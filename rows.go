package itemtext

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names expected in the CSV header.
const (
	ColumnItemID          = "item_id"
	ColumnItemDescription = "item_description"
	ColumnQuestionContent = "question_content"
	ColumnOptions         = "options"
	ColumnCorrectOption   = "correct_option"
	ColumnExplanation     = "explanation"
)

// RequiredColumns lists the header columns ReadRows needs, in canonical order.
var RequiredColumns = []string{
	ColumnItemID,
	ColumnItemDescription,
	ColumnQuestionContent,
	ColumnOptions,
	ColumnCorrectOption,
	ColumnExplanation,
}

// ReadRowsFile opens path and reads it with ReadRows.
func ReadRowsFile(path string) ([]RawRow, error) {
	f, err := os.Open(path) // #nosec G304 -- path is user-provided input file
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadRows, err)
	}
	defer f.Close()

	return ReadRows(f)
}

// ReadRows parses CSV rows with a header line into RawRows.
// Columns may appear in any order and extra columns are ignored. A leading
// UTF-8 or UTF-16 byte order mark is accepted. Short rows read missing
// trailing cells as empty. Cells are kept verbatim; whitespace-only rows
// still count as rows of the item they belong to.
func ReadRows(r io.Reader) ([]RawRow, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrReadRows)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrReadRows, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadRows, err)
		}
		cell := func(col string) string {
			i := index[col]
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		rows = append(rows, RawRow{
			ItemID:          cell(ColumnItemID),
			ItemDescription: cell(ColumnItemDescription),
			QuestionContent: cell(ColumnQuestionContent),
			Options:         cell(ColumnOptions),
			CorrectOption:   parseFlag(cell(ColumnCorrectOption)),
			Explanation:     cell(ColumnExplanation),
		})
	}
	return rows, nil
}

// columnIndex maps each required column to its position in header.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

// parseFlag reports whether a correct_option cell marks the row as correct.
func parseFlag(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "TRUE")
}
