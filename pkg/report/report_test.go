package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/lwp-links/models"
)

func sampleReport() *models.AuditReport {
	return &models.AuditReport{
		Root:      "course",
		Documents: 2,
		Links:     5,
		Findings: []models.AuditFinding{
			{File: "a.html", Link: "x.png", Text: "X", Issue: "Missing File: x.png"},
			{File: "b.html", Link: "https://dead.example", Text: "dead", Issue: "Broken (HTTP Error 404: Not Found)"},
		},
		Skipped: []models.DocumentError{{Path: "c.html", Kind: models.ErrorKindEncoding, Message: "content is not valid UTF-8"}},
	}
}

func TestWriteAuditText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAudit(&buf, sampleReport(), FormatText); err != nil {
		t.Fatalf("WriteAudit() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Missing File: x.png", "https://dead.example", "Total: 2 broken links", "c.html (encoding_error)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "a.html") > strings.Index(out, "b.html") {
		t.Error("findings are not in report order")
	}
}

func TestWriteAuditStructured(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAudit(&buf, sampleReport(), FormatJSON); err != nil {
		t.Fatalf("WriteAudit(json) error = %v", err)
	}
	var decoded struct {
		Findings []map[string]string `json:"findings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Findings) != 2 {
		t.Fatalf("len(findings) = %d, want 2", len(decoded.Findings))
	}
	for _, key := range []string{"file", "link", "text", "issue"} {
		if _, ok := decoded.Findings[0][key]; !ok {
			t.Errorf("finding missing key %q", key)
		}
	}

	buf.Reset()
	if err := WriteAudit(&buf, sampleReport(), FormatYAML); err != nil {
		t.Fatalf("WriteAudit(yaml) error = %v", err)
	}
	var y map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &y); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if y["root"] != "course" {
		t.Errorf("root = %v, want course", y["root"])
	}
}

func TestWriteAuditUnknownFormat(t *testing.T) {
	if err := WriteAudit(&bytes.Buffer{}, sampleReport(), "xml"); err == nil {
		t.Error("WriteAudit(xml) error = nil, want error")
	}
}

func TestWriteRewrite(t *testing.T) {
	var buf bytes.Buffer
	s := &models.RewriteSummary{FilesTouched: 1, Substitutions: 2, Files: []string{"wiki/a.html"}}
	if err := WriteRewrite(&buf, s); err != nil {
		t.Fatalf("WriteRewrite() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Updated: wiki/a.html", "Files updated: 1", "Links fixed: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
