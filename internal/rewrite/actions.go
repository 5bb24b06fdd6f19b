package rewrite

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
	"github.com/dtnitsch/lwp-links/pkg/db"
	"github.com/dtnitsch/lwp-links/pkg/report"
	rewritepkg "github.com/dtnitsch/lwp-links/pkg/rewrite"
	"github.com/dtnitsch/lwp-links/pkg/storage"
	"github.com/urfave/cli/v2"
)

// RewriteAction migrates legacy-extension links under the root given as the
// first argument. It exits 0 unless the root or configuration is invalid or
// another rewrite holds the tree.
func RewriteAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	root := c.Args().First()
	if root == "" {
		return cli.Exit("Error: no course directory given\n\nUsage:\n  lwp-links rewrite <root>", 2)
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

	engine, err := rewritepkg.NewEngine(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.App.ErrWriter, "Scanning for stale .%s links in: %s\n", cfg.LegacyExt, store.Root())
	pass := &rewritepkg.Pass{
		Store:  store,
		Config: cfg,
		Engine: engine,
		Logger: logger,
		DryRun: c.Bool("dry-run"),
	}
	summary, runErr := pass.Run(ctx)
	if errors.Is(runErr, rewritepkg.ErrPassInProgress) {
		logger.Error("rewrite already running", "root", store.Root())
		return cli.Exit(fmt.Sprintf("Error: %v", runErr), 2)
	}
	if runErr != nil {
		logger.Warn("rewrite pass stopped early", "error", runErr)
	}
	if summary == nil {
		return cli.Exit(fmt.Sprintf("Error: %v", runErr), 2)
	}

	if c.Bool("history") && !summary.DryRun {
		database, err := db.Open(cfg.HistoryDB)
		if err != nil {
			logger.Warn("Failed to open history database", "error", err)
		} else {
			if _, err := database.InsertRewriteRun(store.Root(), summary, startTime, time.Now()); err != nil {
				logger.Warn("Failed to record rewrite run", "error", err)
			}
			database.Close()
		}
	}

	if err := report.WriteRewrite(c.App.Writer, summary); err != nil {
		return err
	}
	if errors.Is(runErr, context.Canceled) {
		return cli.Exit("Error: rewrite cancelled before all documents were processed", common.ExitCancelled)
	}
	if runErr != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", runErr), 2)
	}
	return nil
}
