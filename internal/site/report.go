package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stitchdocs/sitegen/internal/errs"
)

// Outcome is the derived final state of a build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// Severity normalizes issue levels.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structured problem found during a build. Code is stable
// contract for automation; Message is for humans.
type Issue struct {
	Code     errs.Kind `json:"code"`
	Severity Severity  `json:"severity"`
	Path     string    `json:"path,omitempty"`
	Message  string    `json:"message"`
}

// Report aggregates the result of one build pass. Per-document problems are
// collected here instead of aborting the batch, so one bad page costs only
// itself.
type Report struct {
	BuildID        string                   `json:"build_id"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	Documents      int                      `json:"documents"`
	Rendered       int                      `json:"rendered"`
	Skipped        int                      `json:"skipped"`
	IndexPages     int                      `json:"index_pages"`
	Locales        []string                 `json:"locales"`
	Issues         []Issue                  `json:"issues"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	Outcome        Outcome                  `json:"outcome"`

	mu sync.Mutex
}

// NewReport starts a report for a fresh build.
func NewReport() *Report {
	return &Report{
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
		Issues:         []Issue{},
	}
}

// severityFor maps error kinds onto report severity. Broken links and failed
// lookups degrade pages locally; everything else is an error.
func severityFor(kind errs.Kind) Severity {
	switch kind {
	case errs.KindBrokenLink, errs.KindNotFound:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// AddIssue records a classified build error.
func (r *Report) AddIssue(err *errs.Error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Issues = append(r.Issues, Issue{
		Code:     err.Kind,
		Severity: severityFor(err.Kind),
		Path:     err.Path,
		Message:  err.Error(),
	})
}

// AddStage records a stage duration.
func (r *Report) AddStage(name string, dur time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StageDurations[name] = dur
}

// Errors returns the number of error-severity issues.
func (r *Report) Errors() int { return r.count(SeverityError) }

// Warnings returns the number of warning-severity issues.
func (r *Report) Warnings() int { return r.count(SeverityWarning) }

func (r *Report) count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// Finish stamps the end time and derives the outcome.
func (r *Report) Finish() {
	r.End = time.Now()
	switch {
	case r.Errors() > 0:
		r.Outcome = OutcomeFailed
	case r.Warnings() > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration returns the wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a one-line human summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("documents=%d rendered=%d skipped=%d indexes=%d errors=%d warnings=%d duration=%s outcome=%s",
		r.Documents, r.Rendered, r.Skipped, r.IndexPages,
		r.Errors(), r.Warnings(), r.Duration().Truncate(time.Millisecond), r.Outcome)
}

// Persist writes build-report.json and build-report.txt into root, each via
// atomic rename. Best effort; failures are for caller logging only and never
// change the build outcome.
func (r *Report) Persist(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}

	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := atomicWrite(filepath.Join(root, "build-report.json"), jb); err != nil {
		return err
	}
	return atomicWrite(filepath.Join(root, "build-report.txt"), []byte(r.Summary()+"\n"))
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
