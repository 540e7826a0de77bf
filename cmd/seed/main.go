// Command seed migrates the schema, creates the admin account and optionally
// loads licenses from a csv or xlsx file, such as an export written by
// cmd/backup. Bindings in the file are restored.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"licensedesk.com/licensedesk/bootstrap"
	"licensedesk.com/licensedesk/config"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/licensing/spreadsheet"
	"licensedesk.com/licensedesk/logging"
)

func main() {
	username := flag.String("username", "", "admin username (defaults to config)")
	password := flag.String("password", "", "admin password (defaults to config)")
	file := flag.String("licenses", "", "csv or xlsx file of licenses to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Must(cfg.Environment, cfg.Logging.Level)
	defer logger.Sync()

	if *username != "" {
		cfg.Auth.AdminUsername = *username
	}
	if *password != "" {
		cfg.Auth.AdminPassword = *password
	}
	if cfg.Auth.AdminUsername == "" || cfg.Auth.AdminPassword == "" {
		logger.Fatal("admin username and password are required")
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to seed", zap.Error(err))
	}
	defer app.Close()

	if *file == "" {
		return
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal("failed to open licenses file", zap.Error(err))
	}
	defer f.Close()

	rows, err := spreadsheet.ReadRows(*file, f)
	if err != nil {
		logger.Fatal("failed to read licenses file", zap.Error(err))
	}

	created, skipped, rejected := 0, 0, 0
	for _, row := range rows {
		if row.Blank() {
			skipped++
			continue
		}
		if row.Err != nil {
			logger.Warn("row rejected", zap.Int("line", row.Line), zap.Error(row.Err))
			rejected++
			continue
		}
		if _, err := app.Activator.Create(ctx, row.Input); err != nil {
			if !errors.Is(err, licensing.ErrConflict) {
				logger.Warn("row rejected", zap.Int("line", row.Line), zap.String("serial", row.Input.SerialNumber), zap.Error(err))
				rejected++
				continue
			}
			skipped++
			continue
		}
		created++
	}
	fmt.Printf("created %d licenses, skipped %d, rejected %d\n", created, skipped, rejected)
}
