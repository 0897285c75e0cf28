package export

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"agreement-radar/types"
)

const (
	AgreementsSheet = "Agreements"
	KeyDatesSheet   = "Key dates"
)

var agreementHeaders = []string{
	"Vendor",
	"Title",
	"Effective date",
	"End date",
	"Term (months)",
	"Auto-renews",
	"Notice days",
	"Opt-out date",
	"Renewal frequency (months)",
	"File",
	"Uploaded",
}

var keyDateHeaders = []string{
	"Date",
	"Kind",
	"Description",
	"Vendor",
	"Title",
}

// WriteWorkbook renders agreements and their key dates into an XLSX workbook.
func WriteWorkbook(w io.Writer, agreements []types.Agreement, keyDates []types.KeyDate) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", AgreementsSheet); err != nil {
		return err
	}
	writeAgreements(file, agreements)

	if _, err := file.NewSheet(KeyDatesSheet); err != nil {
		return err
	}
	writeKeyDates(file, agreements, keyDates)

	file.SetActiveSheet(0)
	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeAgreements(file *excelize.File, agreements []types.Agreement) {
	sheet := AgreementsSheet
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	writeHeader(file, sheet, agreementHeaders)
	for i, a := range agreements {
		row := i + 2
		set(fmt.Sprintf("A%d", row), a.Vendor)
		set(fmt.Sprintf("B%d", row), a.Title)
		set(fmt.Sprintf("C%d", row), formatDate(a.EffectiveDate))
		set(fmt.Sprintf("D%d", row), formatDate(a.EndDate))
		set(fmt.Sprintf("E%d", row), a.TermLengthMonths)
		set(fmt.Sprintf("F%d", row), formatBool(a.AutoRenews))
		set(fmt.Sprintf("G%d", row), a.NoticeDays)
		set(fmt.Sprintf("H%d", row), formatDate(a.ExplicitOptOutDate))
		set(fmt.Sprintf("I%d", row), a.RenewalFrequencyMonths)
		set(fmt.Sprintf("J%d", row), a.SourceFileName)
		set(fmt.Sprintf("K%d", row), a.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	_ = file.SetColWidth(sheet, "A", "B", 32)
	_ = file.SetColWidth(sheet, "C", "D", 14)
	_ = file.SetColWidth(sheet, "J", "J", 40)
	_ = file.SetColWidth(sheet, "K", "K", 20)
}

func writeKeyDates(file *excelize.File, agreements []types.Agreement, keyDates []types.KeyDate) {
	sheet := KeyDatesSheet
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	byID := make(map[uuid.UUID]types.Agreement, len(agreements))
	for _, a := range agreements {
		byID[a.ID] = a
	}

	writeHeader(file, sheet, keyDateHeaders)
	for i, kd := range keyDates {
		row := i + 2
		owner := byID[kd.AgreementID]
		set(fmt.Sprintf("A%d", row), kd.OccursOn.String())
		set(fmt.Sprintf("B%d", row), string(kd.Kind))
		set(fmt.Sprintf("C%d", row), kd.Description)
		set(fmt.Sprintf("D%d", row), owner.Vendor)
		set(fmt.Sprintf("E%d", row), owner.Title)
	}

	_ = file.SetColWidth(sheet, "A", "B", 18)
	_ = file.SetColWidth(sheet, "C", "C", 20)
	_ = file.SetColWidth(sheet, "D", "E", 32)
}

func writeHeader(file *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}
}

func formatDate(d *types.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
