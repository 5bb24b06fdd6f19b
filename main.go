package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/lwp-links/internal/audit"
	"github.com/dtnitsch/lwp-links/internal/history"
	"github.com/dtnitsch/lwp-links/internal/rewrite"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file (defaults apply when omitted)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors",
		},
		&cli.StringFlag{
			Name:  "ext",
			Usage: "Comma-separated document extensions (default: .html,.htm)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob of paths to skip, e.g. '**/_archive/**' (repeatable)",
		},
		&cli.BoolFlag{
			Name:  "history",
			Usage: "Record the run in the history database",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "History database path (default: next to the binary)",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lwp-links",
		Usage: "Audit and repair links in exported course HTML",
		Commands: []*cli.Command{
			{
				Name:      "audit",
				Usage:     "Report links that do not resolve",
				ArgsUsage: "<root>",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Value:   8,
						Usage:   "Concurrent remote link checks",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 5 * time.Second,
						Usage: "Timeout per remote request attempt",
					},
					&cli.BoolFlag{
						Name:  "images",
						Usage: "Also check <img src> references",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Report format: text, json or yaml",
					},
				),
				Action: audit.AuditAction,
			},
			{
				Name:      "rewrite",
				Usage:     "Migrate legacy-extension links (e.g. .pptx to .html)",
				ArgsUsage: "<root>",
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report changes without writing files",
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Legacy extension to replace (default: pptx)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Extension to link to instead (default: html)",
					},
				),
				Action: rewrite.RewriteAction,
			},
			{
				Name:      "history",
				Usage:     "List recorded runs, or show the findings of one run",
				ArgsUsage: "[run-id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
					&cli.StringFlag{Name: "db", Usage: "History database path (default: next to the binary)"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum runs to list"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Findings format: text, json or yaml"},
				},
				Action: history.HistoryAction,
			},
		},
	}
}
