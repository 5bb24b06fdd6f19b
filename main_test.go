package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, int) {
	t.Helper()
	return runAppContext(t, context.Background(), args...)
}

func runAppContext(t *testing.T, ctx context.Context, args ...string) (string, int) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.RunContext(ctx, append([]string{"lwp-links"}, args...))
	code := 0
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String(), code
}

func writeCourse(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestAuditExitCodes(t *testing.T) {
	broken := writeCourse(t, map[string]string{
		"wiki_content/page.html": `<a href="#top">top</a><a href="gone.pdf">Gone</a>`,
	})
	out, code := runApp(t, "audit", "--quiet", broken)
	if code != 1 {
		t.Errorf("audit broken tree exit = %d, want 1", code)
	}
	if !strings.Contains(out, "Missing File: gone.pdf") {
		t.Errorf("output missing finding:\n%s", out)
	}

	_, code = runApp(t, "audit", "--quiet", t.TempDir())
	if code != 0 {
		t.Errorf("audit empty tree exit = %d, want 0", code)
	}

	_, code = runApp(t, "audit", "--quiet", filepath.Join(t.TempDir(), "nope"))
	if code != 2 {
		t.Errorf("audit missing root exit = %d, want 2", code)
	}

	_, code = runApp(t, "audit", "--quiet", "--format", "xml", broken)
	if code != 2 {
		t.Errorf("audit unknown format exit = %d, want 2", code)
	}
}

func TestRewriteThenAuditHistory(t *testing.T) {
	root := writeCourse(t, map[string]string{
		"wiki_content/page.html":  `<a href="../web_resources/deck.pptx">deck (PPTX)</a>`,
		"web_resources/deck.html": `<p>converted</p>`,
	})
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, code := runApp(t, "rewrite", "--quiet", "--history", "--db", dbPath, root)
	if code != 0 {
		t.Fatalf("rewrite exit = %d, want 0", code)
	}
	if !strings.Contains(out, "Files updated: 1") || !strings.Contains(out, "Links fixed: 2") {
		t.Errorf("rewrite output:\n%s", out)
	}

	out, code = runApp(t, "audit", "--quiet", "--history", "--db", dbPath, "--format", "json", root)
	if code != 0 {
		t.Errorf("audit after rewrite exit = %d, want 0:\n%s", code, out)
	}

	out, code = runApp(t, "history", "--db", dbPath)
	if code != 0 {
		t.Fatalf("history exit = %d", code)
	}
	if !strings.Contains(out, "rewrite") || !strings.Contains(out, "audit") || !strings.Contains(out, "Total: 2 runs") {
		t.Errorf("history output:\n%s", out)
	}
}

func TestRewriteInvalidRoot(t *testing.T) {
	_, code := runApp(t, "rewrite", "--quiet", filepath.Join(t.TempDir(), "missing"))
	if code != 2 {
		t.Errorf("rewrite missing root exit = %d, want 2", code)
	}
}

func TestCancelledRunsExitNonZero(t *testing.T) {
	root := writeCourse(t, map[string]string{
		"page.html": `<a href="#top">top</a>`,
		"deck.html": `<a href="deck.pptx">deck</a>`,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, code := runAppContext(t, ctx, "audit", "--quiet", root)
	if code != 130 {
		t.Errorf("cancelled audit exit = %d, want 130", code)
	}
	if !strings.Contains(out, "cancelled") {
		t.Errorf("cancelled audit output:\n%s", out)
	}

	_, code = runAppContext(t, ctx, "rewrite", "--quiet", root)
	if code != 130 {
		t.Errorf("cancelled rewrite exit = %d, want 130", code)
	}
}
