// Command backup uploads an xlsx export of every license to S3.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"
	"licensedesk.com/licensedesk/bootstrap"
	"licensedesk.com/licensedesk/config"
	"licensedesk.com/licensedesk/infrastructure/filesystem"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/licensing/spreadsheet"
	"licensedesk.com/licensedesk/logging"
	"licensedesk.com/licensedesk/utils"
)

func main() {
	list := flag.Bool("list", false, "list existing backups instead of writing one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Must(cfg.Environment, cfg.Logging.Level)
	defer logger.Sync()

	if cfg.Backup.Bucket == "" {
		logger.Fatal("LICENSEDESK_BACKUP_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bucket, err := filesystem.OpenBucket(ctx, cfg.Backup.Bucket)
	if err != nil {
		logger.Fatal("failed to open bucket", zap.Error(err))
	}

	if *list {
		keys, err := bucket.ListFiles(ctx, cfg.Backup.Prefix)
		if err != nil {
			logger.Fatal("failed to list backups", zap.Error(err))
		}
		backups := utils.Filter(keys, func(key string) bool { return strings.HasSuffix(key, ".xlsx") })
		for _, key := range backups {
			fmt.Println(key)
		}
		return
	}

	dm, err := bootstrap.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer dm.Close()

	licenses, total, err := licensing.NewGormStore(dm).ListAll(ctx, licensing.ListFilter{})
	if err != nil {
		logger.Fatal("failed to load licenses", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteXLSX(&buf, licenses); err != nil {
		logger.Fatal("failed to build export", zap.Error(err))
	}

	key := fmt.Sprintf("%slicenses-%s.xlsx", cfg.Backup.Prefix, time.Now().UTC().Format("20060102T150405Z"))
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if err := bucket.WriteFile(ctx, key, bytes.NewReader(buf.Bytes()), contentType); err != nil {
		logger.Fatal("failed to upload backup", zap.Error(err))
	}
	logger.Info("backup written", zap.String("bucket", cfg.Backup.Bucket), zap.String("key", key), zap.Int64("licenses", total))
}
