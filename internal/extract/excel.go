package extract

import (
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// sheet is a workbook sheet as raw rows, no header inference.
type sheet struct {
	name string
	rows [][]string
}

// extractExcel reads the workbook at path. ext is the extension of the name
// the file was uploaded under, since stored paths need not carry one.
func extractExcel(path, ext string) (*Result, error) {
	var (
		sheets []sheet
		err    error
	)
	if ext == ".xls" {
		sheets, err = readXLS(path)
	} else {
		sheets, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	names := make([]string, 0, len(sheets))
	for _, s := range sheets {
		names = append(names, s.name)
		sb.WriteString("Sheet: ")
		sb.WriteString(s.name)
		sb.WriteString("\n")
		for _, row := range s.rows {
			if blankRow(row) {
				continue
			}
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return &Result{
		Text: sb.String(),
		Metadata: map[string]any{
			"sheets": names,
			"format": extOf(path),
		},
	}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func readXLSX(path string) ([]sheet, error) {
	xf, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer xf.Close()

	var sheets []sheet
	for _, name := range xf.GetSheetList() {
		rows, err := xf.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}
	return sheets, nil
}

func readXLS(path string) (sheets []sheet, err error) {
	// extrame/xls panics on truncated BIFF records.
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("parse xls: %v", r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		s := sheet{name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := xlsRow(ws, r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				if c < row.FirstCol() {
					cells = append(cells, "")
					continue
				}
				cells = append(cells, row.Col(c))
			}
			s.rows = append(s.rows, cells)
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// xlsRow returns nil for rows the sheet holds no record for. WorkSheet.Row
// dereferences the missing map entry instead.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}
