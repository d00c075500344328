package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dvloznov/wealthsense/internal/app"
	"github.com/dvloznov/wealthsense/internal/config"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/session"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := logger.NewConsole(os.Stderr, logger.ParseLevel(cfg.LogLevel))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	commands := map[string]func(zerolog.Logger, *config.Config, []string){
		"summary":         runSummary,
		"ledger":          runLedger,
		"series":          runSeries,
		"advice":          runAdvice,
		"add-account":     runAddAccount,
		"add-transaction": runAddTransaction,
		"register":        runRegister,
		"export":          runExport,
		"show-export":     runShowExport,
		"sync-notion":     runSyncNotion,
	}

	switch cmd := os.Args[1]; cmd {
	case "help", "-h", "--help":
		printUsage()
	default:
		run, ok := commands[cmd]
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
			printUsage()
			os.Exit(1)
		}
		run(log, cfg, os.Args[2:])
	}
}

func printUsage() {
	fmt.Println("WealthSense CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  summary          Show balance, income, expense and category breakdown")
	fmt.Println("  ledger           List transactions with account and category labels")
	fmt.Println("  series           Show daily income and expense")
	fmt.Println("  advice           Ask for AI financial advice")
	fmt.Println("  add-account      Create an account")
	fmt.Println("  add-transaction  Record a transaction")
	fmt.Println("  register         Create a production user")
	fmt.Println("  export           Write a snapshot to the configured GCS bucket")
	fmt.Println("  show-export      Print a previously exported snapshot")
	fmt.Println("  sync-notion      Mirror accounts and transactions into Notion")
	fmt.Println("  help             Show this help message")
	fmt.Println("\nCommands run in demo mode unless -mode production -email -password is given.")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

// sessionFlags selects and authenticates the session a command runs in.
type sessionFlags struct {
	mode     *string
	email    *string
	password *string
}

func addSessionFlags(fs *flag.FlagSet, cfg *config.Config) *sessionFlags {
	return &sessionFlags{
		mode:     fs.String("mode", cfg.AppMode, "Session mode: demo or production (default from APP_MODE)"),
		email:    fs.String("email", "", "Email to sign in with (production)"),
		password: fs.String("password", "", "Password to sign in with (production)"),
	}
}

// openSession builds a controller in the requested mode and signs in when
// running in production. The returned cleanup closes the backend.
func openSession(ctx context.Context, log zerolog.Logger, cfg *config.Config, sf *sessionFlags) (*session.Controller, func()) {
	mode, err := session.ParseMode(*sf.mode)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -mode")
	}

	var backend *session.Backend
	if mode == session.ModeProduction {
		backend, err = app.OpenBackend(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open data backend")
		}
	}

	advisor, err := app.NewAdvisor(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create advice generator")
	}

	c := session.NewController(backend, advisor)
	cleanup := func() {
		c.Close()
		if err := app.CloseBackend(backend); err != nil {
			log.Warn().Err(err).Msg("Failed to close backend")
		}
	}

	if err := c.SwitchMode(ctx, mode); err != nil {
		log.Fatal().Err(err).Msg("Failed to switch mode")
	}

	state := c.Snapshot()
	if state.Notice != "" {
		log.Warn().Msg(state.Notice)
	}

	if state.Mode == session.ModeProduction {
		if *sf.email == "" || *sf.password == "" {
			log.Fatal().Msg("Production mode requires -email and -password")
		}
		if _, err := c.SignIn(ctx, *sf.email, *sf.password); err != nil {
			log.Fatal().Err(err).Msg("Sign-in failed")
		}
		if notice := c.Snapshot().Notice; notice != "" {
			log.Fatal().Str("notice", notice).Msg("Failed to load data")
		}
	}

	return c, cleanup
}
