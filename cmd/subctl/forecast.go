package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"subkeeper/internal/models"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Projected charges for the next six months",
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	_, snapshot, err := loadSnapshot()
	if err != nil {
		return err
	}
	if len(snapshot.MonthlyForecast) == 0 {
		fmt.Println("No projected charges in the next six months.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	header := table.Row{"Month"}
	for _, currency := range snapshot.Currencies {
		header = append(header, currency)
	}
	t.AppendHeader(header)

	totals := make(map[string]float64)
	for _, month := range snapshot.MonthlyForecast {
		row := table.Row{month.Date.Format("Jan 2006")}
		for _, currency := range snapshot.Currencies {
			row = append(row, models.FormatMoney(month.Totals[currency]))
			totals[currency] += month.Totals[currency]
		}
		t.AppendRow(row)
	}

	footer := table.Row{"Total"}
	for _, currency := range snapshot.Currencies {
		footer = append(footer, models.FormatMoney(totals[currency]))
	}
	t.AppendFooter(footer)

	t.Render()

	for _, currency := range snapshot.Currencies {
		highlight, ok := snapshot.HighestMonthByCurrency[currency]
		if !ok {
			continue
		}
		fmt.Printf("Peak for %s: %s (%s %s)\n",
			currency, highlight.Date.Format("Jan 2006"),
			models.FormatMoney(highlight.Total), currency)
	}

	return nil
}
