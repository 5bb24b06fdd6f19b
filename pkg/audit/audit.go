// Package audit walks a document tree and reports links that do not resolve.
package audit

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/lwp-links/models"
	"github.com/dtnitsch/lwp-links/pkg/checker"
	"github.com/dtnitsch/lwp-links/pkg/classifier"
	"github.com/dtnitsch/lwp-links/pkg/extractor"
	"github.com/dtnitsch/lwp-links/pkg/fetcher"
	"github.com/dtnitsch/lwp-links/pkg/parser"
	"github.com/dtnitsch/lwp-links/pkg/resolver"
	"github.com/dtnitsch/lwp-links/pkg/walker"
)

// RemoteChecker verifies http(s) links.
type RemoteChecker interface {
	Check(ctx context.Context, url string) models.ResolutionResult
}

// LocalResolver verifies links to files in the tree.
type LocalResolver interface {
	Resolve(target string, source models.DocumentRef) models.ResolutionResult
}

// ProgressFunc is called once per document before it is processed. index
// starts at 1.
type ProgressFunc func(index, total int, file string)

// Deps are the collaborators of an Aggregator. Nil fields get defaults: the
// goquery parser, a resolver over the tree and an HTTP checker.
type Deps struct {
	Parser parser.DocumentParser
	Remote RemoteChecker
	Local  LocalResolver
	Logger *slog.Logger
}

// Aggregator runs the audit. It never writes to the tree.
type Aggregator struct {
	fsys       fs.FS
	cfg        models.Config
	walker     *walker.Walker
	classifier classifier.Classifier
	parser     parser.DocumentParser
	remote     RemoteChecker
	local      LocalResolver
	logger     *slog.Logger
}

func New(fsys fs.FS, cfg models.Config, deps Deps) (*Aggregator, error) {
	a := &Aggregator{
		fsys:       fsys,
		cfg:        cfg,
		walker:     walker.New(fsys, cfg),
		classifier: classifier.New(cfg.FileBaseToken),
		parser:     deps.Parser,
		remote:     deps.Remote,
		local:      deps.Local,
		logger:     deps.Logger,
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	if a.parser == nil {
		a.parser = &parser.Parser{}
	}
	if a.local == nil {
		a.local = resolver.New(fsys, cfg)
	}
	if a.remote == nil {
		c, err := checker.New(fetcher.NewFetcher(), cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.remote = c
	}
	return a, nil
}

// Run audits every document in walk order. Findings keep document order and,
// within a document, link order. The context is checked between documents;
// when it is cancelled the partial report is returned with ctx.Err() and the
// document in flight contributes nothing.
func (a *Aggregator) Run(ctx context.Context, root string, progress ProgressFunc) (*models.AuditReport, error) {
	report := &models.AuditReport{
		Root:     root,
		Started:  time.Now(),
		Findings: []models.AuditFinding{},
	}

	docs, unreadable, err := a.walker.List()
	if err != nil {
		return report, err
	}
	for _, docErr := range unreadable {
		a.logger.Error("Skipping unreadable path", "path", docErr.Path, "error", docErr.Err)
	}
	report.Skipped = append(report.Skipped, unreadable...)

	total := len(docs)
	a.logger.Info("Starting audit", "root", root, "documents", total, "workers", a.cfg.WorkerCount)
	for idx, doc := range docs {
		if err := ctx.Err(); err != nil {
			report.Cancelled = true
			a.logger.Warn("Audit cancelled", "processed", idx, "total", total)
			return report, err
		}
		if progress != nil {
			progress(idx+1, total, string(doc))
		}

		findings, links, docErr := a.auditDocument(ctx, doc)
		if docErr != nil {
			a.logger.Error("Skipping document", "file", doc, "kind", docErr.Kind, "error", docErr.Err)
			report.Skipped = append(report.Skipped, *docErr)
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Cancelled = true
			a.logger.Warn("Audit cancelled", "processed", idx, "total", total)
			return report, err
		}

		report.Documents++
		report.Links += links
		report.Findings = append(report.Findings, findings...)
	}

	a.logger.Info("Audit finished", "documents", report.Documents, "links", report.Links, "findings", len(report.Findings), "skipped", len(report.Skipped))
	return report, nil
}

func (a *Aggregator) auditDocument(ctx context.Context, doc models.DocumentRef) ([]models.AuditFinding, int, *models.DocumentError) {
	parsed, err := extractor.Load(a.fsys, doc, a.parser)
	if err != nil {
		var docErr *models.DocumentError
		if errors.As(err, &docErr) {
			return nil, 0, docErr
		}
		return nil, 0, models.NewDocumentError(string(doc), models.ErrorKindParse, err)
	}

	var refs []models.LinkReference
	if a.cfg.CheckImages {
		refs = extractor.ExtractLinks(parsed, doc)
	} else {
		refs = extractor.Extract(parsed, doc)
	}
	if candidates := extractor.RewriteCandidates(refs, a.cfg.LegacyExt); len(candidates) > 0 {
		a.logger.Info("Document has legacy links, run rewrite to migrate them", "file", doc, "count", len(candidates))
	}

	results := make([]models.ResolutionResult, len(refs))
	var remote []probeJob
	for i, ref := range refs {
		class := a.classifier.Classify(ref.RawTarget)
		switch class.Kind {
		case models.LinkInternal:
			results[i] = models.ResolutionResult{Valid: true, Detail: "Internal/Special"}
		case models.LinkRemote:
			remote = append(remote, probeJob{index: i, url: class.Target})
		case models.LinkLocal:
			results[i] = a.local.Resolve(ref.RawTarget, doc)
		}
	}
	a.probe(ctx, remote, results)

	var findings []models.AuditFinding
	for i, ref := range refs {
		if results[i].Valid {
			continue
		}
		a.logger.Info("Broken link", "file", doc, "link", ref.RawTarget, "issue", results[i].Detail)
		findings = append(findings, models.AuditFinding{
			File:  string(doc),
			Link:  ref.RawTarget,
			Text:  models.TruncateText(ref.DisplayText, models.MaxFindingText),
			Issue: results[i].Detail,
		})
	}
	return findings, len(refs), nil
}

type probeJob struct {
	index int
	url   string
}

type probeResult struct {
	index  int
	result models.ResolutionResult
}

// probe checks remote links on a bounded pool and stores each result at the
// index of its link.
func (a *Aggregator) probe(ctx context.Context, jobs []probeJob, results []models.ResolutionResult) {
	if len(jobs) == 0 {
		return
	}
	workerCount := a.cfg.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	var wg sync.WaitGroup
	jobCh := make(chan probeJob, len(jobs))
	resultCh := make(chan probeResult, len(jobs))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobCh {
				a.logger.Debug("Worker checking URL", "worker_id", id, "url", job.url)
				resultCh <- probeResult{index: job.index, result: a.remote.Check(ctx, job.url)}
			}
		}(w)
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	wg.Wait()
	close(resultCh)

	for r := range resultCh {
		results[r.index] = r.result
	}
}
