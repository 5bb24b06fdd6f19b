package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dtnitsch/lwp-links/internal/common"
	"github.com/dtnitsch/lwp-links/models"
	"github.com/dtnitsch/lwp-links/pkg/db"
	"github.com/dtnitsch/lwp-links/pkg/report"
	"github.com/urfave/cli/v2"
)

// HistoryAction lists recorded runs, or the findings of one audit run when a
// run ID is given.
func HistoryAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if c.Args().Present() {
		runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: invalid run ID %q", c.Args().First()), 2)
		}
		return showRun(c, database, runID)
	}

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	fmt.Fprintf(w, "%-6s %-8s %-20s %-6s %-8s %-9s %-8s %s\n",
		"ID", "Kind", "Started", "Docs", "Links", "Findings", "Fixed", "Root")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-8s %-20s %-6d %-8d %-9d %-8d %s\n",
			r.RunID,
			r.Kind,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Documents,
			r.Links,
			r.FindingsCount,
			r.Substitutions,
			r.Root,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'lwp-links history <id>' to see the findings of an audit\n")
	return nil
}

func showRun(c *cli.Context, database *db.DB, runID int64) error {
	run, err := database.GetRun(runID)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	if run.Kind != db.RunKindAudit {
		fmt.Fprintf(c.App.Writer, "Run %d was a %s pass: %d files updated, %d links fixed\n",
			run.RunID, run.Kind, run.FilesTouched, run.Substitutions)
		return nil
	}

	findings, err := database.GetRunFindings(runID)
	if err != nil {
		return err
	}
	return report.WriteAudit(c.App.Writer, &models.AuditReport{
		Root:      run.Root,
		Started:   run.StartedAt,
		Documents: run.Documents,
		Links:     run.Links,
		Findings:  findings,
		Cancelled: run.Cancelled,
	}, c.String("format"))
}
