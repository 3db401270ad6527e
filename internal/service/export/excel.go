package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"jobwork-backend/internal/service/report"
)

type ReportSource interface {
	MaterialTrackingReport(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]report.Row, error)
}

type ExcelService struct {
	reports ReportSource
}

func NewExcelService(reports ReportSource) *ExcelService {
	return &ExcelService{reports: reports}
}

// MaterialReportExcel рендерит материальный отчёт по работнику в .xlsx
// для сверки с бухгалтерией.
func (s *ExcelService) MaterialReportExcel(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]byte, error) {
	const op = "service.export.MaterialReportExcel"

	rows, err := s.reports.MaterialTrackingReport(ctx, companyID, workerID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch report: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Material Report"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"Item ID", "Item", "Unit", "Given", "Used", "Returned", "Wasted", "Remaining", "Value"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	var totalGiven, totalRemaining, totalValue float64
	for i, row := range rows {
		values := []interface{}{
			row.ItemID, row.ItemName, row.Unit,
			row.QuantityGiven, row.QuantityUsed, row.QuantityReturned,
			row.QuantityWasted, row.QuantityRemaining, row.TotalValue,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
		totalGiven += row.QuantityGiven
		totalRemaining += row.QuantityRemaining
		totalValue += row.TotalValue
	}

	// итоговая строка
	totalRow := len(rows) + 2
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), "ИТОГО")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), totalGiven)
	f.SetCellValue(sheet, fmt.Sprintf("H%d", totalRow), totalRemaining)
	f.SetCellValue(sheet, fmt.Sprintf("I%d", totalRow), totalValue)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("I%d", totalRow), headerStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write buffer: %w", op, err)
	}

	return buf.Bytes(), nil
}
