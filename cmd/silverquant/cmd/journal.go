package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/silverquant/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade journal",
	Long: `Query and display journal records from the SQLite database.

Subcommands:
  today  - List trades closed today
  day    - List trades closed on a specific day
  equity - Show the equity range recorded on a specific day

Examples:
  silverquant journal today
  silverquant journal day 2024-03-01
  silverquant journal equity 2024-03-01`,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTrades(time.Now().Format("2006-01-02"))
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTrades(args[0])
	},
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <YYYY-MM-DD>",
	Short: "Show the equity range recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalEquityCmd)
}

func openSQLiteJournal() (*journal.SQLite, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Journal.Type != "sqlite" {
		return nil, fmt.Errorf("journal queries need journal.type sqlite (got %q)", cfg.Journal.Type)
	}
	return journal.NewSQLite(cfg.Journal.DBPath)
}

func dayBounds(day string) (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date %q: %w", day, err)
	}
	return start, start.Add(24 * time.Hour), nil
}

func listTrades(day string) error {
	j, err := openSQLiteJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(day)
	if err != nil {
		return err
	}

	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(recs) == 0 {
		fmt.Printf("No trades closed on %s\n", day)
		return nil
	}

	fmt.Printf("%-8s %-6s %3s %10s %10s %10s %10s  %s\n",
		"symbol", "side", "qty", "entry", "exit", "gross", "comm", "reason")
	for _, r := range recs {
		fmt.Printf("%-8s %-6s %3d %10.2f %10.2f %10.2f %10.4f  %s\n",
			r.Symbol, r.Side, r.Quantity, r.EntryPrice, r.ExitPrice, r.GrossPnL, r.Commission, r.Reason)
	}
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := openSQLiteJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(args[0])
	if err != nil {
		return err
	}

	recs, err := j.ListEquityBetween(start, end)
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}
	if len(recs) == 0 {
		fmt.Printf("No equity samples on %s\n", args[0])
		return nil
	}

	lo, hi := recs[0].Equity, recs[0].Equity
	for _, r := range recs[1:] {
		if r.Equity < lo {
			lo = r.Equity
		}
		if r.Equity > hi {
			hi = r.Equity
		}
	}
	fmt.Printf("Samples: %d\n", len(recs))
	fmt.Printf("Open:    %.2f\n", recs[0].Equity)
	fmt.Printf("Close:   %.2f\n", recs[len(recs)-1].Equity)
	fmt.Printf("Low:     %.2f\n", lo)
	fmt.Printf("High:    %.2f\n", hi)
	return nil
}
