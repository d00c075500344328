package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/wealthsense/internal/app"
	"github.com/dvloznov/wealthsense/internal/config"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/export"
	"github.com/dvloznov/wealthsense/internal/gcsuploader"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/notionsync"
	"github.com/dvloznov/wealthsense/internal/session"
	"github.com/dvloznov/wealthsense/internal/summary"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func runSummary(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	from := fs.String("from", "", "First day of the period (YYYY-MM-DD)")
	to := fs.String("to", "", "Last day of the period (YYYY-MM-DD)")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	fs.Parse(args)

	rng, err := summary.ParseRange(*from, *to)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid period")
	}

	ctx := logger.WithContext(context.Background(), log)
	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	report := c.Report(rng)
	if *asJSON {
		printJSON(report)
		return
	}

	fmt.Println("\n=== Summary ===")
	fmt.Printf("Total balance: %s\n", report.TotalBalance.StringFixed(2))
	fmt.Printf("Income:        %s\n", report.Income.StringFixed(2))
	fmt.Printf("Expense:       %s\n", report.Expense.StringFixed(2))
	fmt.Printf("Net flow:      %s\n", report.NetFlow.StringFixed(2))

	fmt.Println("\n=== Expense by category ===")
	for _, cat := range report.Categories {
		fmt.Printf("  %-15s %12s\n", cat.Category, cat.Amount.StringFixed(2))
	}

	fmt.Println("\n=== Accounts ===")
	for _, share := range report.Shares {
		fmt.Printf("  %-20s %12s %6s%%\n", share.Name, share.Balance.StringFixed(2), share.Percent.StringFixed(1))
	}
	fmt.Println()
}

func runLedger(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ledger", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	recent := fs.Int("recent", 0, "Only show the N most recent transactions")
	fs.Parse(args)

	ctx := logger.WithContext(context.Background(), log)
	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	state := c.Snapshot()
	txs := state.Transactions
	if *recent > 0 {
		txs = summary.Recent(txs, *recent)
	}

	entries := summary.Ledger(state.Accounts, txs)
	fmt.Printf("\n=== Transactions (%d) ===\n", len(entries))
	for i, e := range entries {
		sign := "-"
		if e.IsIncome() {
			sign = "+"
		}
		fmt.Printf("\n%d. %s\n", i+1, e.Description)
		fmt.Printf("   Date:     %s\n", e.Date)
		fmt.Printf("   Amount:   %s%s\n", sign, e.Amount.StringFixed(2))
		fmt.Printf("   Account:  %s\n", e.AccountName)
		fmt.Printf("   Category: %s\n", e.Category)
	}
	fmt.Println()
}

func runSeries(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("series", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	endStr := fs.String("end", "", "Last day of the series (YYYY-MM-DD, default today)")
	days := fs.Int("days", 7, "Number of days")
	fs.Parse(args)

	end := civil.DateOf(time.Now())
	if *endStr != "" {
		d, err := civil.ParseDate(*endStr)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -end")
		}
		end = d
	}

	ctx := logger.WithContext(context.Background(), log)
	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	fmt.Printf("%-12s %12s %12s\n", "Date", "Income", "Expense")
	for _, b := range c.Series(end, *days) {
		fmt.Printf("%-12s %12s %12s\n", b.Date, b.Income.StringFixed(2), b.Expense.StringFixed(2))
	}
}

func runAdvice(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("advice", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	timeout := fs.Duration("timeout", 2*time.Minute, "Timeout for the model call")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	text, err := c.Advice(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Advice failed")
	}
	fmt.Println(text)
}

func runAddAccount(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("add-account", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	name := fs.String("name", "", "Account name")
	typ := fs.String("type", "savings", "Account type label")
	balance := fs.String("balance", "0", "Opening balance")
	color := fs.String("color", "", "Display color token (default: next palette entry)")
	fs.Parse(args)

	bal, err := decimal.NewFromString(*balance)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -balance")
	}

	ctx := logger.WithContext(context.Background(), log)
	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	created, err := c.AddAccount(ctx, domain.Account{Name: *name, Type: *typ, Balance: bal, Color: *color})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add account")
	}
	printJSON(created)
	warnIfDemo(log, c)
}

func runAddTransaction(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("add-transaction", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	accountID := fs.String("account", "", "Account ID")
	amount := fs.String("amount", "", "Amount (non-negative)")
	typ := fs.String("type", "expense", "income or expense")
	category := fs.String("category", "Other", "Category name")
	description := fs.String("description", "", "Description")
	date := fs.String("date", civil.DateOf(time.Now()).String(), "Date (YYYY-MM-DD)")
	fs.Parse(args)

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -amount")
	}
	txType, err := domain.ParseTransactionType(*typ)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -type")
	}

	ctx := logger.WithContext(context.Background(), log)
	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	created, err := c.AddTransaction(ctx, domain.Transaction{
		AccountID:   *accountID,
		Amount:      amt,
		Category:    *category,
		Description: *description,
		Date:        *date,
		Type:        txType,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add transaction")
	}
	printJSON(created)
	warnIfDemo(log, c)
}

func warnIfDemo(log zerolog.Logger, c *session.Controller) {
	if c.Snapshot().Mode == session.ModeDemo {
		log.Warn().Msg("Demo mode: the change is not persisted")
	}
}

func runRegister(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Email of the new user")
	password := fs.String("password", "", "Password (at least 6 characters)")
	fs.Parse(args)

	ctx := logger.WithContext(context.Background(), log)

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data backend")
	}
	if backend == nil {
		log.Fatal().Msg("Registration needs a configured data backend")
	}
	defer app.CloseBackend(backend)

	user, err := backend.Auth.Register(ctx, *email, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("Registration failed")
	}
	fmt.Printf("Registered %s (uid %s)\n", user.Email, user.UID)
}

func runExport(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	bucket := fs.String("bucket", cfg.GCSBucket, "GCS bucket (or set GCS_BUCKET env)")
	fs.Parse(args)
	cfg.GCSBucket = *bucket

	ctx := logger.WithContext(context.Background(), log)

	exporter, closeExporter, err := app.NewExporter(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}
	defer closeExporter()

	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	state := c.Snapshot()
	if state.User == nil {
		log.Fatal().Msg("No user is signed in")
	}

	uri, err := exporter.Export(ctx, export.NewSnapshot(*state.User, state.Accounts, state.Transactions, time.Now()))
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	fmt.Printf("Exported snapshot to %s\n", uri)
}

func runShowExport(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("show-export", flag.ExitOnError)
	uri := fs.String("uri", "", "gs:// URI of the snapshot")
	fs.Parse(args)

	if *uri == "" {
		log.Fatal().Msg("Usage: cli show-export -uri gs://BUCKET/exports/UID/FILE.json")
	}

	ctx := logger.WithContext(context.Background(), log)

	bucket, _, err := gcsuploader.ParseGCSURI(*uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -uri")
	}
	cfg.GCSBucket = bucket

	exporter, closeExporter, err := app.NewExporter(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}
	defer closeExporter()

	snap, err := exporter.Load(ctx, *uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load snapshot")
	}
	printJSON(snap)
}

func runSyncNotion(log zerolog.Logger, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	sf := addSessionFlags(fs, cfg)
	dryRun := fs.Bool("dry-run", false, "Log what would change without writing to Notion")
	fs.Parse(args)

	if !cfg.NotionEnabled() {
		log.Fatal().Msg("Set NOTION_TOKEN and NOTION_ACCOUNTS_DB_ID or NOTION_TRANSACTIONS_DB_ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	c, cleanup := openSession(ctx, log, cfg, sf)
	defer cleanup()

	state := c.Snapshot()
	if state.User == nil {
		log.Fatal().Msg("No user is signed in")
	}

	client := notionsync.NewNotionClient(cfg.NotionToken)

	if cfg.NotionAccountsDBID != "" {
		res, err := notionsync.SyncAccounts(ctx, client, cfg.NotionAccountsDBID, state.User.UID, state.Accounts, *dryRun)
		if err != nil {
			log.Fatal().Err(err).Msg("Account sync failed")
		}
		fmt.Printf("Accounts: %d created, %d archived, %d unchanged, %d failed\n", res.Created, res.Deleted, res.Skipped, res.Failed)
	}

	if cfg.NotionTransactionsDBID != "" {
		res, err := notionsync.SyncTransactions(ctx, client, cfg.NotionTransactionsDBID, state.User.UID, state.Transactions, state.Accounts, *dryRun)
		if err != nil {
			log.Fatal().Err(err).Msg("Transaction sync failed")
		}
		fmt.Printf("Transactions: %d created, %d archived, %d unchanged, %d failed\n", res.Created, res.Deleted, res.Skipped, res.Failed)
	}
}
