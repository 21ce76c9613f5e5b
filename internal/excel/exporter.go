package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocablab/pkg/models"
)

// exportSheet is the default sheet of a new workbook
const exportSheet = "Sheet1"

var exportHeader = []interface{}{"Word", "Part of speech", "Meaning", "Example", "Pronunciation", "Audio", "Tags", "Level", "Next review"}

// Export writes the words as an xlsx workbook laid out like DefaultImportConfig,
// followed by level and next review date columns
func Export(w io.Writer, words []models.Word) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, style)
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 18)
	_ = f.SetColWidth(exportSheet, "C", "D", 40)

	for i, word := range words {
		row := []interface{}{
			word.Term,
			word.PartOfSpeech,
			word.Meaning,
			word.Example,
			word.Pronunciation,
			word.AudioRef,
			strings.Join(word.Tags, ", "),
			word.Level,
			word.NextReviewDate.Format("2006-01-02"),
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
