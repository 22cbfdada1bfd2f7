// Package sheet parses the spreadsheet CSV export into raw records.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/bobmcallan/networth/internal/models"
)

// ErrNoDateColumn is returned when the header row has no date column.
var ErrNoDateColumn = errors.New("sheet header has no date column")

// ParseOptions configures Parse.
type ParseOptions struct {
	HeaderRow  int        // 0-based line holding the labels; earlier lines are skipped
	Vocabulary Vocabulary // nil means DefaultVocabulary
}

// Result is the parsed table plus header bookkeeping.
type Result struct {
	Records []models.RawRecord
	Columns []models.Column // logical columns found in the header, in header order
	Unknown []string        // header labels not in the vocabulary
}

// Parse reads a CSV export. Rows keep their source order; Row numbers count
// data rows from 0. A column absent from the header is simply absent from each
// record, which downstream reads as zero. Unknown headers are ignored.
// When two labels map to the same column the left-most one wins.
func Parse(r io.Reader, opts ParseOptions) (*Result, error) {
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.HeaderRow; i++ {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("sheet ended before header row %d", opts.HeaderRow)
			}
			return nil, fmt.Errorf("failed to read preamble line %d: %w", i, err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("sheet ended before header row %d", opts.HeaderRow)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	res := &Result{}
	index := make(map[int]models.Column, len(header))
	taken := make(map[models.Column]bool, len(header))
	for i, label := range header {
		col, ok := vocab.Lookup(label)
		if !ok {
			if NormalizeLabel(label) != "" {
				res.Unknown = append(res.Unknown, label)
			}
			continue
		}
		if taken[col] {
			continue
		}
		taken[col] = true
		index[i] = col
		res.Columns = append(res.Columns, col)
	}
	if !taken[models.ColumnDate] {
		return nil, fmt.Errorf("%w (header: %v)", ErrNoDateColumn, header)
	}

	row := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row %d: %w", row, err)
		}
		cells := make(map[models.Column]string, len(index))
		for i, col := range index {
			if i < len(fields) {
				cells[col] = fields[i]
			}
		}
		res.Records = append(res.Records, models.RawRecord{Row: row, Cells: cells})
		row++
	}

	return res, nil
}
