package rewrite

import (
	"testing"

	"github.com/dtnitsch/lwp-links/models"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(models.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      string
		wantCount int
	}{
		{
			name:      "href with query and display text",
			in:        `<a href="a/b/report.pptx?x=1">report (PPTX)</a>`,
			want:      `<a href="a/b/report.html?x=1">report (HTML)</a>`,
			wantCount: 2,
		},
		{
			name:      "href without query",
			in:        `<a href="files/deck.pptx">Slides</a>`,
			want:      `<a href="files/deck.html">Slides</a>`,
			wantCount: 1,
		},
		{
			name:      "bare file name",
			in:        `<a href="deck.pptx">Slides</a>`,
			want:      `<a href="deck.html">Slides</a>`,
			wantCount: 1,
		},
		{
			name:      "canvas file base token",
			in:        `<a href="$IMS-CC-FILEBASE$/Uploaded%20Media%202/PE_1_4-3_Returning.pptx?canvas_=1&amp;canvas_qs_wrap=1">PE_1_4-3_Returning (PPTX)</a>`,
			want:      `<a href="$IMS-CC-FILEBASE$/Uploaded%20Media%202/PE_1_4-3_Returning.html?canvas_=1&amp;canvas_qs_wrap=1">PE 1 4-3 Returning (HTML)</a>`,
			wantCount: 2,
		},
		{
			name:      "display text with prefix",
			in:        `<a href="x.html">Week 2: Intro_Deck (PPTX)</a>`,
			want:      `<a href="x.html">Week 2: Intro Deck (HTML)</a>`,
			wantCount: 1,
		},
		{
			name:      "several links",
			in:        `<a href="a.pptx">a</a><a href="d/b.pptx?q">b</a><a href="c.pdf">c</a>`,
			want:      `<a href="a.html">a</a><a href="d/b.html?q">b</a><a href="c.pdf">c</a>`,
			wantCount: 2,
		},
		{
			name:      "no match is untouched",
			in:        `<p>nothing to see <a href="https://example.com/pptx">here</a></p>`,
			want:      `<p>nothing to see <a href="https://example.com/pptx">here</a></p>`,
			wantCount: 0,
		},
		{
			name:      "empty",
			in:        "",
			want:      "",
			wantCount: 0,
		},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := e.Rewrite(tt.in)
			if got != tt.want {
				t.Errorf("Rewrite() text =\n  %s\nwant\n  %s", got, tt.want)
			}
			if n != tt.wantCount {
				t.Errorf("Rewrite() count = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	inputs := []string{
		`<a href="a/b/report.pptx?x=1">report (PPTX)</a>`,
		`<a href="a.pptx?u=x/b.pptx?c">x</a>`,
		`<a href="x.pptx.pptx">x_y (PPTX)</a> <a href="y">z (PPTX)</a>`,
		`<div>>>_ (PPTX)</a></div>`,
		`href="/.pptx"`,
	}

	e := newEngine(t)
	for _, in := range inputs {
		once, _ := e.Rewrite(in)
		twice, n := e.Rewrite(once)
		if n != 0 {
			t.Errorf("second Rewrite(%q) count = %d, want 0", in, n)
		}
		if twice != once {
			t.Errorf("second Rewrite(%q) changed text: %q -> %q", in, once, twice)
		}
	}
}

func TestNewEngineCustomExtensions(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.LegacyExt = ".docx"
	cfg.TargetExt = "pdf"

	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	got, n := e.Rewrite(`<a href="w/notes.docx">notes (DOCX)</a>`)
	if want := `<a href="w/notes.pdf">notes (PDF)</a>`; got != want || n != 2 {
		t.Errorf("Rewrite() = %q, %d; want %q, 2", got, n, want)
	}
	if len(e.Rules()) != 3 {
		t.Errorf("len(Rules()) = %d, want 3", len(e.Rules()))
	}
}
