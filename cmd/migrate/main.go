package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marketplace/storefront/internal/infrastructure/config"
	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/infrastructure/migration"
	"github.com/marketplace/storefront/internal/infrastructure/persistence"
)

func main() {
	var (
		configPath string
		dsn        string
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "", "Path to config.toml")
	flag.StringVar(&dsn, "dsn", "", "Sandbox database DSN (default: sandbox.dsn from config)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if dsn == "" {
		dsn = cfg.Sandbox.DSN
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("dsn", dsn),
	)

	db, err := persistence.NewDatabaseWithLogger(dsn, logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	m := migration.New(db.DB, log)

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if !hasConfirm(args[1:]) {
			log.Fatal("Down cancelled. Use 'migrate down -confirm' to drop every sandbox table.")
		}
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "seed":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}
		if err := persistence.Seed(context.Background(), db.DB); err != nil {
			log.Fatal("Seeding failed", zap.Error(err))
		}
		log.Info("Sandbox data seeded", zap.String("demo_user", persistence.DemoUsername))

	case "tables":
		tables := m.Tables()
		if len(tables) == 0 {
			log.Info("No sandbox tables found")
			return
		}
		log.Info("Sandbox tables", zap.Int("count", len(tables)))
		for _, t := range tables {
			fmt.Println("  -", t)
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func hasConfirm(args []string) bool {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Println(`Storefront sandbox database tool

Usage:
  migrate [flags] <command>

Commands:
  up              Create or update every sandbox table
  down -confirm   Drop every sandbox table
  seed            Apply migrations and load the demo catalog and user
  tables          List the sandbox tables that exist

Flags:
  -config string      Path to config.toml
  -dsn string         Database DSN (default: sandbox.dsn)
  -log-level string   Log level: debug, info, warn, error (default: info)

Examples:
  migrate up
  migrate -dsn ./sandbox.db seed`)
}
