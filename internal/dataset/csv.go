// Package dataset turns a delimited vocabulary table into a domain.Dataset.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"vocab-quiz-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names of the source table.
const (
	ColumnEnglish  = "english"
	ColumnChinese  = "chinese"
	ColumnPhonetic = "phonetic"
	ColumnExample  = "example"
)

var (
	// ErrEmpty is returned for a table without a header row.
	ErrEmpty = errors.New("empty vocabulary table")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidRow is returned when a row lacks a required value.
	ErrInvalidRow = errors.New("invalid vocabulary row")
)

var validate = validator.New()

type columns struct {
	english, chinese, phonetic, example int
}

// Parse reads a CSV table with a header row. The english and chinese columns
// are required; phonetic and example are optional and default to empty.
// A leading UTF-8 BOM is ignored and fully blank rows are skipped.
func Parse(user string, r io.Reader) (domain.Dataset, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.Dataset{}, ErrEmpty
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return domain.Dataset{}, err
	}

	ds := domain.Dataset{User: user}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		entry := domain.VocabularyEntry{
			Term:        field(record, cols.english),
			Translation: field(record, cols.chinese),
			Phonetic:    field(record, cols.phonetic),
			Example:     field(record, cols.example),
		}
		if err := validate.Struct(entry); err != nil {
			line, _ := reader.FieldPos(0)
			return domain.Dataset{}, fmt.Errorf("%w: line %d: %v", ErrInvalidRow, line, err)
		}
		ds.Entries = append(ds.Entries, entry)
	}
	return ds, nil
}

func mapColumns(header []string) (columns, error) {
	cols := columns{english: -1, chinese: -1, phonetic: -1, example: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ColumnEnglish:
			cols.english = i
		case ColumnChinese:
			cols.chinese = i
		case ColumnPhonetic:
			cols.phonetic = i
		case ColumnExample:
			cols.example = i
		}
	}
	if cols.english < 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnEnglish)
	}
	if cols.chinese < 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnChinese)
	}
	return cols, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
