// Package export renders a user's ledger as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/report"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// Sheet names.
const (
	SheetEntries  = "Entries"
	SheetOdometer = "Odometer"
	SheetCredits  = "Credits"
	SheetSummary  = "Summary"
)

// Service loads ledgers and produces workbooks.
type Service struct {
	ledger storage.Ledger
	log    *zap.SugaredLogger
}

func NewService(ledger storage.Ledger, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{ledger: ledger, log: log}
}

// Ledger is the loaded data of one owner.
type Ledger struct {
	Expenses []models.Expense
	Earnings []models.Earning
	Odometer []models.OdometerEntry
	Credits  []models.CreditEntry
}

// Load fetches the exportable collections of ownerID concurrently.
func (s *Service) Load(ctx context.Context, ownerID string) (Ledger, error) {
	var l Ledger
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { l.Expenses, err = s.ledger.Expenses().ListByOwner(ctx, ownerID); return })
	g.Go(func() (err error) { l.Earnings, err = s.ledger.Earnings().ListByOwner(ctx, ownerID); return })
	g.Go(func() (err error) { l.Odometer, err = s.ledger.Odometer().ListByOwner(ctx, ownerID); return })
	g.Go(func() (err error) { l.Credits, err = s.ledger.Credits().ListByOwner(ctx, ownerID); return })
	if err := g.Wait(); err != nil {
		return Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	return l, nil
}

// WorkbookFor loads ownerID's ledger and returns it as XLSX bytes.
func (s *Service) WorkbookFor(ctx context.Context, ownerID string) ([]byte, error) {
	start := time.Now()
	l, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out, err := Workbook(l)
	if err != nil {
		return nil, err
	}
	s.log.Infow("export.xlsx.ok",
		"user_id", ownerID,
		"rows", len(l.Expenses)+len(l.Earnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Workbook renders l. Entries are merged newest first with signed amounts.
func Workbook(l Ledger) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetEntries); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetOdometer, SheetCredits, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	entries := [][]any{}
	for _, e := range models.MergeEntries(l.Expenses, l.Earnings) {
		entries = append(entries, []any{
			e.Date.String(), string(e.Kind), e.Description, e.Category, e.SignedAmount().InexactFloat64(),
		})
	}
	if err := writeTable(f, SheetEntries, []string{"Date", "Kind", "Description", "Category", "Amount"}, entries); err != nil {
		return nil, err
	}

	odometer := [][]any{}
	for _, o := range l.Odometer {
		odometer = append(odometer, []any{o.Date.String(), o.StartKm, o.EndKm, o.Distance()})
	}
	if err := writeTable(f, SheetOdometer, []string{"Date", "Start km", "End km", "Distance"}, odometer); err != nil {
		return nil, err
	}

	credits := [][]any{}
	for _, c := range l.Credits {
		c = c.Normalize()
		credits = append(credits, []any{
			c.Description, c.Category, c.DueDate.String(),
			c.TotalAmount.InexactFloat64(), c.PaidAmount.InexactFloat64(), c.RemainingBalance.InexactFloat64(),
		})
	}
	if err := writeTable(f, SheetCredits, []string{"Description", "Category", "Due date", "Total", "Paid", "Remaining"}, credits); err != nil {
		return nil, err
	}

	d := report.BuildDashboard(l.Expenses, l.Earnings, l.Odometer, l.Credits)
	summary := [][]any{
		{"Total earnings", d.TotalEarnings.InexactFloat64()},
		{"Total expenses", d.TotalExpenses.InexactFloat64()},
		{"Balance", d.Balance.InexactFloat64()},
		{"Fuel", d.FuelExpenses.InexactFloat64()},
		{"Total km", d.TotalKm},
		{"Earnings per km", d.EarningsPerKm.InexactFloat64()},
		{"Outstanding debt", d.OutstandingDebt.InexactFloat64()},
	}
	if err := writeTable(f, SheetSummary, []string{"Metric", "Value"}, summary); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(SheetEntries, "A", "B", 12)
	_ = f.SetColWidth(SheetEntries, "C", "D", 28)
	_ = f.SetColWidth(SheetCredits, "A", "A", 28)
	_ = f.SetColWidth(SheetSummary, "A", "A", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
