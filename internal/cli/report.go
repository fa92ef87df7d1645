package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
	"github.com/institutofocos/consultorpro-sub003/internal/timer"
)

func newReportCommand() *cobra.Command {
	var days int
	var finances bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print time and finance summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := setup()
			if err != nil {
				return err
			}
			defer s.Close()

			if finances {
				return printFinances(cmd, s)
			}
			return printDaily(cmd, s, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "how many days back to summarize")
	cmd.Flags().BoolVar(&finances, "finances", false, "show per-project income and expenses instead")

	return cmd
}

func printDaily(cmd *cobra.Command, s *store.Store, days int) error {
	to := time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -days)

	summaries, err := s.GetDailySummary(from, to)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No completed sessions in range.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Day", "Project", "Sessions", "Time"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	var total int64
	for _, ds := range summaries {
		tw.AppendRow(table.Row{ds.Date, ds.ProjectName, ds.SessionCount, timer.FormatTime(int(ds.TotalMinutes))})
		total += ds.TotalMinutes
	}
	tw.AppendFooter(table.Row{"", "Total", "", timer.FormatTime(int(total))})
	tw.Render()
	return nil
}

func printFinances(cmd *cobra.Command, s *store.Store) error {
	finances, err := s.GetProjectFinances()
	if err != nil {
		return err
	}
	if len(finances) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No transactions recorded.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Project", "Income", "Expenses", "Net"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for _, f := range finances {
		net := f.IncomeCents - f.ExpenseCents
		tw.AppendRow(table.Row{f.ProjectName, formatCents(f.IncomeCents), formatCents(f.ExpenseCents), formatCents(net)})
	}
	tw.Render()
	return nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
