package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtnitsch/lwp-links/internal/common"
	"github.com/dtnitsch/lwp-links/models"
	auditpkg "github.com/dtnitsch/lwp-links/pkg/audit"
	"github.com/dtnitsch/lwp-links/pkg/db"
	"github.com/dtnitsch/lwp-links/pkg/report"
	"github.com/dtnitsch/lwp-links/pkg/storage"
	"github.com/urfave/cli/v2"
)

// AuditAction checks every link under the root given as the first argument.
// Exit codes: 0 no broken links, 1 broken links found, 2 fatal error.
func AuditAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))

	root := c.Args().First()
	if root == "" {
		return cli.Exit("Error: no course directory given\n\nUsage:\n  lwp-links audit <root>", 2)
	}

	if err := report.CheckFormat(c.String("format")); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	cfg, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	store, err := storage.Open(root)
	if err != nil {
		logger.Error("invalid root", "root", root, "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator, err := auditpkg.New(store.FS(), cfg, auditpkg.Deps{Logger: logger})
	if err != nil {
		logger.Error("failed to initialize audit", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	progress := func(index, total int, file string) {
		if !c.Bool("quiet") {
			fmt.Fprintf(c.App.ErrWriter, "[%d/%d] Auditing: %s\n", index, total, file)
		}
	}

	result, runErr := aggregator.Run(ctx, store.Root(), progress)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("audit failed", "error", runErr)
		return cli.Exit(fmt.Sprintf("Error: %v", runErr), 2)
	}

	if c.Bool("history") {
		recordAudit(logger, cfg, result)
	}

	if err := report.WriteAudit(c.App.Writer, result, c.String("format")); err != nil {
		logger.Error("failed to write report", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	if result.Cancelled {
		return cli.Exit("Error: audit cancelled before all documents were checked", common.ExitCancelled)
	}
	if len(result.Findings) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func recordAudit(logger *slog.Logger, cfg models.Config, result *models.AuditReport) {
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("Failed to open history database", "error", err)
		return
	}
	defer database.Close()

	runID, err := database.InsertAuditRun(result, time.Now())
	if err != nil {
		logger.Warn("Failed to record audit run", "error", err)
		return
	}
	logger.Info("Recorded audit run", "run_id", runID, "db", database.Path())
}
