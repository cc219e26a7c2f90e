package pipeline

import (
	"sort"
	"time"

	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/ledger"
)

// Failure is one series unit that could not be extracted.
type Failure struct {
	Document   string `json:"document"`
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
}

// EntityResult is the verdict for one stored (or, in a dry run, checked) entity.
type EntityResult struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Verdict string `json:"verdict"`
}

// Report summarizes a run.
type Report struct {
	RunID            string         `json:"run_id"`
	ExtractorVersion string         `json:"extractor_version"`
	DryRun           bool           `json:"dry_run"`
	Documents        int            `json:"documents"`
	Units            int            `json:"units"`
	Extracted        int            `json:"extracted"`
	Skipped          int            `json:"skipped"`
	PublicPreview    int            `json:"public_preview"`
	Failed           int            `json:"failed"`
	New              int            `json:"new"`
	Changed          int            `json:"changed"`
	Unchanged        int            `json:"unchanged"`
	FailuresByKind   map[string]int `json:"failures_by_kind,omitempty"`
	Failures         []Failure      `json:"failures,omitempty"`
	Entities         []EntityResult `json:"entities,omitempty"`
	StartTime        time.Time      `json:"start_time"`
	EndTime          time.Time      `json:"end_time"`
}

func (r *Report) fail(doc, identifier string, err error) {
	kind := errors.Kind(err)
	if r.FailuresByKind == nil {
		r.FailuresByKind = make(map[string]int)
	}
	r.FailuresByKind[kind]++
	r.Failed++
	r.Failures = append(r.Failures, Failure{
		Document:   doc,
		Identifier: identifier,
		Kind:       kind,
		Error:      err.Error(),
	})
}

func (r *Report) count(kind, name string, v ledger.Verdict) {
	switch v {
	case ledger.New:
		r.New++
	case ledger.Changed:
		r.Changed++
	case ledger.Unchanged:
		r.Unchanged++
	}
	r.Entities = append(r.Entities, EntityResult{Kind: kind, Name: name, Verdict: v.String()})
}

// sort orders failures and entities so reports of identical runs compare equal
// regardless of worker scheduling.
func (r *Report) sort() {
	sort.Slice(r.Failures, func(i, j int) bool {
		a, b := r.Failures[i], r.Failures[j]
		if a.Document != b.Document {
			return a.Document < b.Document
		}
		return a.Identifier < b.Identifier
	})
	sort.Slice(r.Entities, func(i, j int) bool {
		a, b := r.Entities[i], r.Entities[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Name < b.Name
	})
}

// Verdicts returns the entity verdicts keyed by "kind/name".
func (r *Report) Verdicts() map[string]string {
	out := make(map[string]string, len(r.Entities))
	for _, e := range r.Entities {
		out[e.Kind+"/"+e.Name] = e.Verdict
	}
	return out
}
