package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders one sheet per owner report into a single workbook.
func (g *XLSXGenerator) Generate(ctx context.Context, reports []model.OwnerReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(reports) == 0 {
		return nil, "", errors.New("empty reports")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	for i, report := range reports {
		err := g.fillSheet(ctx, f, report, i+1)
		if err != nil {
			return nil, "", err
		}
	}

	// Drop the implicit default sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(ctx context.Context, f *excelize.File, report model.OwnerReport, ordinal int) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.fillSheet"

	sheetName := fmt.Sprintf("%d. %s", ordinal, report.Owner)
	_, err := f.NewSheet(sheetName)
	if err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	// Holdings table.
	headers := []string{"Ticker", "Name", "Qty", "Avg Cost", "Current Price", "Invested", "Market Value", "P/L", "P/L %"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, h)
	}
	if err := f.SetCellStyle(sheetName, "A1", "I1", boldStyle); err != nil {
		return err
	}

	row := 2
	for _, v := range report.Snapshot.Holdings {
		values := []any{
			v.Ticker,
			v.Name,
			v.Qty,
			v.AvgCost.InexactFloat64(),
			v.CurrentPrice.InexactFloat64(),
			v.InvestedAmount.InexactFloat64(),
			v.MarketValue.InexactFloat64(),
			v.PL.InexactFloat64(),
			v.PLPercent.Round(2).InexactFloat64(),
		}
		for i, value := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, value)
		}
		row++
	}

	// Totals block.
	row++
	totals := [][2]any{
		{"Total Invested", report.Snapshot.TotalCost.InexactFloat64()},
		{"Total Value", report.Snapshot.TotalValue.InexactFloat64()},
		{"Total P/L", report.Snapshot.TotalPL.InexactFloat64()},
		{"Today's P/L", report.Snapshot.TodaysPL.InexactFloat64()},
	}
	for _, t := range totals {
		labelCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		valueCell, err := excelize.CoordinatesToCellName(2, row)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, labelCell, t[0])
		f.SetCellValue(sheetName, valueCell, t[1])
		if err := f.SetCellStyle(sheetName, labelCell, labelCell, boldStyle); err != nil {
			return err
		}
		row++
	}

	if err := f.SetColWidth(sheetName, "A", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "C", "I", 14); err != nil {
		return err
	}

	return nil
}
