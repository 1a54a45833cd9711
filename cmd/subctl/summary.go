package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"subkeeper/internal/models"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Subscription list with monthly costs and next payments",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	subs, snapshot, err := loadSnapshot()
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No subscriptions.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Cost", "Billing", "Monthly", "Next payment", "Due"})

	for _, sub := range subs {
		next := "—"
		due := "—"
		if detail := snapshot.NextPaymentDetails[sub.ID]; detail != nil {
			next = detail.Date.Format(models.DateLayout)
			due = models.FormatDaysLeft(detail.DaysLeft)
			if detail.DaysLeft <= 7 {
				due = text.FgRed.Sprint(due)
			}
		}

		t.AppendRow(table.Row{
			sub.Name,
			fmt.Sprintf("%s %s", models.FormatMoney(sub.Cost), sub.Currency),
			sub.FrequencyLabel,
			fmt.Sprintf("%s %s", models.FormatMoney(sub.MonthlyCost()), sub.Currency),
			next,
			due,
		})
	}

	for _, currency := range snapshot.Currencies {
		t.AppendFooter(table.Row{
			fmt.Sprintf("Total (%s)", currency),
			"",
			"",
			fmt.Sprintf("%s %s", models.FormatMoney(snapshot.MonthlyTotals[currency]), currency),
			"",
			fmt.Sprintf("%d subs", snapshot.SubscriptionCountByCurrency[currency]),
		})
	}

	t.Render()

	if len(snapshot.UpcomingPayments) > 0 {
		fmt.Printf("\nDue within 30 days (as of %s):\n", time.Now().Format(models.DateLayout))
		for _, payment := range snapshot.UpcomingPayments {
			fmt.Printf("  %s — %s %s on %s (%s)\n",
				payment.Name,
				models.FormatMoney(payment.Cost), payment.Currency,
				payment.NextDate.Format(models.DateLayout),
				models.FormatDaysLeft(payment.DaysLeft))
		}
	}

	return nil
}
