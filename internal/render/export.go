package render

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"attendview/internal/attendance"
)

const sheetName = "Attendance"

func (r *Renderer) exportRows(records []attendance.Report) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"Name", "Reg No.", "Status", "Timestamp"})
	for _, rec := range records {
		rows = append(rows, []string{rec.Name, rec.RegNumber, string(rec.Status), r.FormatTimestamp(rec.Timestamp)})
	}
	return rows
}

// CSV encodes records with a header row. Every column is included.
func (r *Renderer) CSV(records []attendance.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(r.exportRows(records)); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX encodes records as a single-sheet workbook.
func (r *Renderer) XLSX(records []attendance.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, row := range r.exportRows(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
