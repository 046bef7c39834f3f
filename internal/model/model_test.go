package model

import (
	"slices"
	"testing"
	"time"
)

// TestNewDocument tests the Document constructor.
func TestNewDocument(t *testing.T) {
	t.Parallel()

	doc := NewDocument("a/b.md", "content")

	t.Run("keeps original and current text", func(t *testing.T) {
		t.Parallel()
		if doc.Original != "content" || doc.Text != "content" {
			t.Errorf("got original %q text %q", doc.Original, doc.Text)
		}
	})

	t.Run("sets processing timestamp", func(t *testing.T) {
		t.Parallel()
		if doc.DateProcessed.IsZero() {
			t.Error("expected DateProcessed to be set")
		}
		if time.Since(doc.DateProcessed) > time.Second {
			t.Error("DateProcessed is too old")
		}
	})

	t.Run("starts without failure", func(t *testing.T) {
		t.Parallel()
		if doc.Failed() {
			t.Error("expected new document not to be failed")
		}
		if doc.Steps == nil {
			t.Error("expected Steps to be initialized")
		}
	})
}

// TestFileTableAnalysisResult tests table aggregation.
func TestFileTableAnalysisResult(t *testing.T) {
	t.Parallel()

	t.Run("counts well and badly formed tables", func(t *testing.T) {
		t.Parallel()

		r := NewFileTableAnalysisResult("doc.md")
		r.AddTable(TableInfo{IsWellFormed: true})
		r.AddTable(TableInfo{IsWellFormed: false, Issues: []TableIssue{NewColumnIssue(4, "bad row", 2, 1)}})
		r.AddTable(TableInfo{IsWellFormed: true})

		if r.TotalTables != 3 || r.WellFormedTables != 2 || r.BadlyFormedTables != 1 {
			t.Errorf("unexpected counts: %+v", r)
		}
		if !r.Reconciled() {
			t.Error("expected result to be reconciled")
		}
		if r.IssueCount() != 1 {
			t.Errorf("expected 1 issue, got %d", r.IssueCount())
		}
	})

	t.Run("detects inconsistent counters", func(t *testing.T) {
		t.Parallel()

		r := NewFileTableAnalysisResult("")
		r.TotalTables = 1
		if r.Reconciled() {
			t.Error("expected result not to be reconciled")
		}
	})

	t.Run("column issue keeps counts", func(t *testing.T) {
		t.Parallel()

		issue := NewColumnIssue(3, "mismatch", 2, 5)
		if issue.ExpectedColumns == nil || *issue.ExpectedColumns != 2 {
			t.Errorf("expected 2 expected columns, got %v", issue.ExpectedColumns)
		}
		if issue.FoundColumns == nil || *issue.FoundColumns != 5 {
			t.Errorf("expected 5 found columns, got %v", issue.FoundColumns)
		}

		plain := NewTableIssue(7, "orphan")
		if plain.ExpectedColumns != nil || plain.FoundColumns != nil {
			t.Error("expected no column counts on plain issue")
		}
	})
}

// TestBatchSummary tests summary helpers.
func TestBatchSummary(t *testing.T) {
	t.Parallel()

	s := NewBatchSummary[int]()
	s.PerFileResults["b.md"] = 2
	s.PerFileResults["a.md"] = 1
	s.Errors["z.md"] = "boom"
	s.FilesWithErrors = 1

	if got := s.Paths(); !slices.Equal(got, []string{"a.md", "b.md"}) {
		t.Errorf("unexpected paths: %v", got)
	}
	if got := s.ErrorPaths(); !slices.Equal(got, []string{"z.md"}) {
		t.Errorf("unexpected error paths: %v", got)
	}
	if !s.HasErrors() {
		t.Error("expected HasErrors to be true")
	}

	want := "Operation completed on 2 files. Errors on 1 files."
	if got := CompletedMessage(2, 1); got != want {
		t.Errorf("got %q, expected %q", got, want)
	}
}

// TestBadnessReport tests percentage accessors.
func TestBadnessReport(t *testing.T) {
	t.Parallel()

	r := NewBadnessReport()
	r.ScriptPercentages["lat"] = 25
	r.ScriptPercentages["gre"] = 40

	if r.LatinPercentage() != 25 {
		t.Errorf("got %v, expected 25", r.LatinPercentage())
	}
	if r.GreekPercentage() != 40 {
		t.Errorf("got %v, expected 40", r.GreekPercentage())
	}

	r.ScriptPercentages["grc"] = 55
	if r.GreekPercentage() != 55 {
		t.Errorf("got %v, expected polytonic share 55", r.GreekPercentage())
	}
	if r.Percentage("fra") != 0 {
		t.Error("expected 0 for unrequested script")
	}

	r.OriginalNonWhitespaceChars = 10
	r.GoodCharCount = 7
	r.BadCharCount = 3
	if !r.Balanced() {
		t.Error("expected report to be balanced")
	}
}

// TestBadnessDistribution tests bucket assignment and the clean Greek count.
func TestBadnessDistribution(t *testing.T) {
	t.Parallel()

	d := NewBadnessDistribution(0.1, 0.7)
	d.Add(0, 100)
	d.Add(0.05, 50)
	d.Add(0.15, 90)
	d.Add(0.95, 0)
	d.Add(1, 0)

	if d.Total != 5 {
		t.Errorf("expected total 5, got %d", d.Total)
	}
	if d.Buckets[0] != 2 || d.Buckets[1] != 1 || d.Buckets[9] != 2 {
		t.Errorf("unexpected buckets %v", d.Buckets)
	}
	if d.CleanGreek != 1 {
		t.Errorf("expected 1 clean greek document, got %d", d.CleanGreek)
	}
	if BucketLabel(3) != "0.3-0.4" {
		t.Errorf("unexpected label %q", BucketLabel(3))
	}
	if BucketIndex(-1) != 0 || BucketIndex(2) != 9 {
		t.Error("expected out-of-range scores to be clamped")
	}
}

// TestMapSummary tests result conversion between summary types.
func TestMapSummary(t *testing.T) {
	t.Parallel()

	s := NewBatchSummary[*Document]()
	s.Status = StatusCompleted
	s.FilesProcessed = 1
	s.FilesWithErrors = 1
	s.TotalFilesFound = 2

	analyzed := NewDocument("a.md", "x")
	analyzed.Badness = NewBadnessReport()
	s.PerFileResults["a.md"] = analyzed
	s.PerFileResults["b.md"] = NewDocument("b.md", "y")
	s.Errors["b.md"] = "boom"

	out := MapSummary(s, func(d *Document) (*BadnessReport, bool) {
		return d.Badness, d.Badness != nil
	})

	if out.Status != StatusCompleted || out.FilesProcessed != 1 || out.TotalFilesFound != 2 {
		t.Errorf("unexpected counters %+v", out)
	}
	if len(out.PerFileResults) != 1 || out.PerFileResults["a.md"] != analyzed.Badness {
		t.Errorf("unexpected results %v", out.PerFileResults)
	}
	if out.Errors["b.md"] != "boom" {
		t.Errorf("expected errors to be copied, got %v", out.Errors)
	}
}
