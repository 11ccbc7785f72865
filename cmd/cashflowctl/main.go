// Command cashflowctl inspects and edits the persisted planner snapshot
// from the terminal, bypassing the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cashflow/internal/cli"
	"cashflow/internal/core"
	"cashflow/internal/csvio"
	applog "cashflow/internal/log"
	"cashflow/internal/ledger"
	"cashflow/internal/persist"
)

var rootCmd = &cobra.Command{
	Use:          "cashflowctl",
	Short:        "Inspect and edit the persisted cashflow snapshot",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(showCmd, exportCmd, importCmd, resetCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openAdapter wires config and the KV backend the same way the server does.
func openAdapter() (*persist.Adapter, func(), context.Context, context.CancelFunc) {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)
	kv := cli.OpenKV(logger, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	return persist.NewAdapter(kv, logger.Logger), func() { kv.Close() }, ctx, cancel
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, closeKV, ctx, cancel := openAdapter()
		defer closeKV()
		defer cancel()

		s := adapter.Load(ctx)
		fmt.Printf("Range:   %s .. %s\n", s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
		fmt.Printf("Opening: %s\n", s.Opening)
		fmt.Printf("Closing: %s\n", core.ClosingBalance(s.Opening, s.Transactions))
		fmt.Printf("Save progress: %v\n", s.SaveProgress)

		fmt.Printf("\nTemplates (%d):\n", len(s.Templates))
		for _, t := range s.Templates {
			fmt.Printf("  %-20s %10s  %s\n", t.Name, t.Amount, t.Color)
		}

		fmt.Printf("\nTransactions (%d):\n", len(s.Transactions))
		for _, t := range s.Transactions {
			fmt.Printf("  %-8s %-20s %10s\n", t.Date.DayKey(), t.Name, t.Amount)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the persisted snapshot as CSV (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, closeKV, ctx, cancel := openAdapter()
		defer closeKV()
		defer cancel()

		s := adapter.Load(ctx)
		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return csvio.Encode(out, s.Transactions, s.Opening, s.Start, s.End)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the persisted snapshot from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, closeKV, ctx, cancel := openAdapter()
		defer closeKV()
		defer cancel()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := csvio.Decode(f)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		current := adapter.Load(ctx)
		store := ledger.New(current)
		store.Replace(doc.Transactions, doc.Opening, doc.Start, doc.End)
		// Importing from the CLI implies the user wants the result kept.
		store.SetSaveProgress(true)

		if err := adapter.SetSaveProgress(ctx, true); err != nil {
			return err
		}
		if err := adapter.Save(ctx, store.Snapshot()); err != nil {
			return err
		}
		fmt.Printf("Imported %d transactions\n", len(doc.Transactions))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the persisted snapshot to defaults (the saved range survives)",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, closeKV, ctx, cancel := openAdapter()
		defer closeKV()
		defer cancel()

		current := adapter.Load(ctx)
		store := ledger.New(current, ledger.WithRangeDefaults(func() (core.Date, core.Date, bool) {
			return adapter.PersistedRange(ctx)
		}))
		snapshot := store.ResetToDefaults()

		if !snapshot.SaveProgress {
			fmt.Println("Save progress is off; nothing persisted to reset")
			return nil
		}
		if err := adapter.Save(ctx, snapshot); err != nil {
			return err
		}
		fmt.Println("Snapshot reset to defaults")
		return nil
	},
}
