// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// SheetName is the worksheet that holds the records.
const SheetName = "Sheet1"

// WriteXLSX writes a workbook with a header row of types.Columns followed
// by one row per record in session order. Zero records still produce the
// header row.
func WriteXLSX(path string, records []types.ResultRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("opening stream writer: %w", err)
	}

	if err := sw.SetRow("A1", cells(types.Columns)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(r.Row())); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	return f.SaveAs(path)
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
