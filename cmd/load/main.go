// Command load bulk-inserts expenses from a CSV file into the ledger.
//
// Usage:
//
//	load <file.csv>
//	load - < file.csv
//
// The first row is a header. Columns are date, category (ID or name), name,
// organization, amount and notes. Either every row is inserted or none.
package main

import (
	"fmt"
	"io"
	"os"

	"expensetrack/internal/config"
	"expensetrack/internal/database"
	"expensetrack/internal/logger"
	"expensetrack/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Load error: %v", err)
	}
}

func run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <file.csv|->")
	}

	var src io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		src = f
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}()

	if err := manager.RunMigrations(); err != nil {
		return err
	}

	n, err := services.NewExpenseService(manager.DB()).ImportCSV(src)
	if err != nil {
		return err
	}

	logger.Get().Infof("Loaded %d expense(s)", n)
	return nil
}
