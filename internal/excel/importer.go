package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocablab/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	TermColumn          string // Column with the word
	PartOfSpeechColumn  string // Column with the part of speech
	MeaningColumn       string // Column with the meaning
	ExampleColumn       string // Column with an example sentence
	PronunciationColumn string // Column with the pronunciation
	AudioColumn         string // Column with an audio URL
	TagsColumn          string // Column with comma separated tags
	SheetName           string // Name of the sheet to import; empty means the first sheet
	StartRow            int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TermColumn:          "A",
		PartOfSpeechColumn:  "B",
		MeaningColumn:       "C",
		ExampleColumn:       "D",
		PronunciationColumn: "E",
		AudioColumn:         "F",
		TagsColumn:          "G",
		StartRow:            2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the words read from a sheet
type ImportResult struct {
	Words          []models.Word
	TotalProcessed int
	Skipped        int
	Errors         []string
}

// ImportFile reads words from an Excel or CSV file
func ImportFile(path string, config ImportConfig) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return Import(bytes.NewReader(data), filepath.Base(path), config)
}

// Import reads words from r. The name's extension selects the format.
func Import(r io.Reader, name string, config ImportConfig) (*ImportResult, error) {
	var rows [][]string
	var err error

	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		rows, err = readCSV(r)
	} else {
		rows, err = readWorkbook(r, config.SheetName)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows, config), nil
}

func readWorkbook(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

// parseRows turns sheet rows into words. A row with only its first cell
// filled is a group header; its text is added as a tag to the rows below.
func parseRows(rows [][]string, config ImportConfig) *ImportResult {
	result := &ImportResult{Errors: make([]string, 0)}
	group := ""

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}

		if header, ok := groupHeader(row); ok {
			group = header
			continue
		}

		result.TotalProcessed++

		word := models.Word{
			Term:          cleanWord(cell(row, config.TermColumn)),
			PartOfSpeech:  cell(row, config.PartOfSpeechColumn),
			Meaning:       cell(row, config.MeaningColumn),
			Example:       cell(row, config.ExampleColumn),
			Pronunciation: cell(row, config.PronunciationColumn),
			AudioRef:      cell(row, config.AudioColumn),
			Tags:          models.ParseTags(cell(row, config.TagsColumn)),
		}
		if group != "" && !hasTag(word.Tags, group) {
			word.Tags = append(word.Tags, group)
		}

		if word.Term == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: word cannot be empty", rowNum))
			continue
		}
		if word.Meaning == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: meaning cannot be empty", rowNum))
			continue
		}

		result.Words = append(result.Words, word)
	}

	return result
}

func groupHeader(row []string) (string, bool) {
	first := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if first == "" {
		return "", false
	}
	for _, c := range row[1:] {
		if strings.TrimSpace(c) != "" {
			return "", false
		}
	}
	return first, true
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// cleanWord удаляет из слова дополнительную информацию в скобках, "go (went, gone)" -> "go"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
