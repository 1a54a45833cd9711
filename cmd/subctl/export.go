package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"subkeeper/internal/models"
)

var flagExportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write subscriptions and projections to an XLSX workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportPath, "out", "o", "subkeeper.xlsx", "Output file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	subs, snapshot, err := loadSnapshot()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSubscriptionsSheet(f, subs, snapshot); err != nil {
		return err
	}
	if err := writeTotalsSheet(f, snapshot); err != nil {
		return err
	}
	if err := writeForecastSheet(f, snapshot); err != nil {
		return err
	}
	if err := writeCalendarSheet(f, snapshot); err != nil {
		return err
	}

	// Drop the default sheet created by excelize
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(flagExportPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	fmt.Printf("Exported %d subscriptions to %s\n", len(subs), flagExportPath)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeSubscriptionsSheet(f *excelize.File, subs []models.Subscription, snapshot *models.Analytics) error {
	const sheet = "Subscriptions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"ID", "Name", "Cost", "Currency", "Billing months", "Frequency", "Monthly cost", "Next payment", "Days left", "Category", "Notes"}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, sub := range subs {
		next := ""
		daysLeft := interface{}("")
		if detail := snapshot.NextPaymentDetails[sub.ID]; detail != nil {
			next = detail.Date.Format(models.DateLayout)
			daysLeft = detail.DaysLeft
		}

		row := []interface{}{
			sub.ID, sub.Name, sub.Cost, sub.Currency, sub.Months,
			sub.FrequencyLabel, sub.MonthlyCost(), next, daysLeft,
			sub.Category, sub.Notes,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTotalsSheet(f *excelize.File, snapshot *models.Analytics) error {
	const sheet = "Totals"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := writeRow(f, sheet, 1, []interface{}{"Currency", "Subscriptions", "Monthly", "Quarterly", "Yearly", "Average per subscription"}); err != nil {
		return err
	}

	for i, currency := range snapshot.Currencies {
		row := []interface{}{
			currency,
			snapshot.SubscriptionCountByCurrency[currency],
			snapshot.MonthlyTotals[currency],
			snapshot.QuarterlyTotals[currency],
			snapshot.YearlyTotals[currency],
			snapshot.AverageMonthlyPerSubscription[currency],
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeForecastSheet(f *excelize.File, snapshot *models.Analytics) error {
	const sheet = "Forecast"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Month"}
	for _, currency := range snapshot.Currencies {
		header = append(header, currency)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, month := range snapshot.MonthlyForecast {
		row := []interface{}{month.Key}
		for _, currency := range snapshot.Currencies {
			row = append(row, month.Totals[currency])
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCalendarSheet(f *excelize.File, snapshot *models.Analytics) error {
	const sheet = "Calendar"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := writeRow(f, sheet, 1, []interface{}{"Date", "Subscription", "Cost", "Currency"}); err != nil {
		return err
	}

	row := 2
	for _, entry := range snapshot.Calendar {
		for _, item := range entry.Items {
			values := []interface{}{entry.Date.Format(models.DateLayout), item.Name, item.Cost, item.Currency}
			if err := writeRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
