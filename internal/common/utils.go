package common

import (
	"strings"

	"github.com/dtnitsch/lwp-links/models"
	"github.com/urfave/cli/v2"
)

// ExitCancelled is the exit code of a pass interrupted before it covered the
// whole tree, whatever it found so far.
const ExitCancelled = 130

// LoadConfig builds the run configuration from --config, the environment and
// command-line flags, in increasing order of precedence. Flags a command does
// not define are ignored.
func LoadConfig(c *cli.Context) (models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("images") {
		cfg.CheckImages = c.Bool("images")
	}
	if c.IsSet("ext") {
		cfg.Extensions = splitList(c.String("ext"))
	}
	if c.IsSet("exclude") {
		cfg.Exclude = c.StringSlice("exclude")
	}
	if c.IsSet("from") {
		cfg.LegacyExt = c.String("from")
	}
	if c.IsSet("to") {
		cfg.TargetExt = c.String("to")
	}
	if c.IsSet("db") {
		cfg.HistoryDB = c.String("db")
	}
	return cfg, cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
