package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fadhlanhapp/paytracker-backend/models"
	"github.com/fadhlanhapp/paytracker-backend/utils"
)

// ExcelService handles Excel export functionality
type ExcelService struct {
	ledgerService *LedgerService
}

// NewExcelService creates a new Excel service
func NewExcelService(ledgerService *LedgerService) *ExcelService {
	return &ExcelService{ledgerService: ledgerService}
}

var headerFill = excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1}

// ExportLedgerToExcel builds a workbook with the payment history and the
// per-person summary as of now
func (s *ExcelService) ExportLedgerToExcel(ctx context.Context) (*excelize.File, string, error) {
	payments, err := s.ledgerService.ListPayments(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get payments: %w", err)
	}

	now := s.ledgerService.now()
	summary, err := s.ledgerService.summarize(payments, now)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()

	if err := s.createPaymentSheet(f, payments); err != nil {
		return nil, "", fmt.Errorf("failed to create payment sheet: %w", err)
	}
	if err := s.createSummarySheet(f, summary); err != nil {
		return nil, "", fmt.Errorf("failed to create summary sheet: %w", err)
	}

	// Delete the default sheet
	f.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("%s_%s.xlsx", utils.CleanFileName("Payment History"), now.Format(time.DateOnly))
	return f, filename, nil
}

// createPaymentSheet creates the Payments sheet, newest first
func (s *ExcelService) createPaymentSheet(f *excelize.File, payments []models.Payment) error {
	sheetName := "Payments"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headers := []interface{}{"ID", "Name", "Amount", "Reason", "Date"}
	if err := writeHeader(f, sheetName, headers); err != nil {
		return err
	}

	for i, payment := range payments {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{payment.ID, payment.Name, payment.Amount.InexactFloat64(), payment.Reason, payment.Date}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	return setColWidths(f, sheetName, []colWidth{{"A", "A", 8}, {"B", "C", 15}, {"D", "E", 28}})
}

// createSummarySheet creates the Summary sheet
func (s *ExcelService) createSummarySheet(f *excelize.File, summary *models.LedgerSummary) error {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	headers := []interface{}{"Person", "Total Paid", "Expected", "Due", "Missed Days", "Since"}
	if err := writeHeader(f, sheetName, headers); err != nil {
		return err
	}

	for i, person := range summary.People {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			person.Name,
			person.TotalPaid.InexactFloat64(),
			person.Expected.InexactFloat64(),
			person.AmountDue.InexactFloat64(),
			person.MissedDays,
			person.Since,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	footer := len(summary.People) + 3
	footerRows := [][]interface{}{
		{"Daily rate", summary.DailyRate.InexactFloat64()},
		{"As of", summary.AsOf},
	}
	for i, row := range footerRows {
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", footer+i), &row); err != nil {
			return err
		}
	}

	return setColWidths(f, sheetName, []colWidth{{"A", "F", 15}})
}

type colWidth struct {
	start, end string
	width      float64
}

func setColWidths(f *excelize.File, sheetName string, widths []colWidth) error {
	for _, w := range widths {
		if err := f.SetColWidth(sheetName, w.start, w.end, w.width); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheetName string, headers []interface{}) error {
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: headerFill,
	})
	if err != nil {
		return err
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheetName, "A1", lastCell, headerStyle)
}
