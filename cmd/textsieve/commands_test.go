package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/textsieve/internal/cleaner"
	"github.com/nao1215/textsieve/internal/config"
	"github.com/nao1215/textsieve/internal/model"
	"github.com/nao1215/textsieve/internal/store"
)

// TestCleanCmd tests the clean command.
func TestCleanCmd(t *testing.T) {
	t.Parallel()

	t.Run("cleans files and writes a JSON summary", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		out := filepath.Join(t.TempDir(), "cleaned")
		writeFile(t, filepath.Join(in, "a.md"), "keep\n<span>gone</span>\n")
		writeFile(t, filepath.Join(in, "sub", "b.md"), "plain\n")
		writeFile(t, filepath.Join(in, "skip.txt"), "<b>ignored</b>\n")

		stdout, _, err := executeRoot(t, "clean", in, "-o", out, "-s", "lat", "-w", "2", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var summary model.BatchSummary[*model.CleaningStats]
		if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
			t.Fatalf("invalid JSON output %q: %v", stdout, err)
		}
		if summary.FilesProcessed != 2 || summary.FilesWithErrors != 0 {
			t.Errorf("unexpected counts: %+v", summary)
		}
		if stats := summary.PerFileResults[filepath.Join(in, "a.md")]; stats == nil || stats.TagChars != 13 {
			t.Errorf("unexpected stats for a.md: %+v", stats)
		}

		got, err := os.ReadFile(filepath.Join(out, "a.md"))
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(got) != "keep\ngone "+cleaner.Marker+"\n" {
			t.Errorf("unexpected cleaned text %q", got)
		}
		if _, err := os.Stat(filepath.Join(out, "sub", "b.md")); err != nil {
			t.Errorf("expected nested output: %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "skip.txt")); !os.IsNotExist(err) {
			t.Error("did not expect ineligible file in output")
		}
	})

	t.Run("requires an output directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "clean", t.TempDir())
		if !errors.Is(err, errOutputDirRequired) {
			t.Errorf("expected errOutputDirRequired, got %v", err)
		}
	})

	t.Run("rejects conflicting formats", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "clean", t.TempDir(), "-o", t.TempDir(), "--json", "--csv")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("writes the report file", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeFile(t, filepath.Join(in, "a.md"), "text\n")
		reportPath := filepath.Join(t.TempDir(), "reports", "clean.md")

		stdout, _, err := executeRoot(t, "clean", in, "-o", t.TempDir(), "--markdown", "-r", reportPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}

		info, err := os.Stat(reportPath)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}
	})
}

// TestAnalyzeCmd tests the analyze command.
func TestAnalyzeCmd(t *testing.T) {
	t.Parallel()

	t.Run("single file as CSV", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.md")
		writeFile(t, path, "Καλημέρα κόσμε")

		stdout, _, err := executeRoot(t, "analyze", path, "-s", "gre", "--csv")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %q", stdout)
		}
		if lines[0] != "File Name,Badness,Greek Percentage,Latin Percentage" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.HasPrefix(lines[1], path+",") {
			t.Errorf("unexpected row %q", lines[1])
		}
	})

	t.Run("directory as text", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeFile(t, filepath.Join(in, "a.md"), "hello world")

		stdout, _, err := executeRoot(t, "analyze", in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, filepath.Join(in, "a.md")) {
			t.Errorf("expected file in report, got %q", stdout)
		}
	})

	t.Run("unknown script", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "analyze", t.TempDir(), "-s", "xx")
		if err == nil {
			t.Error("expected error for unknown script")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "analyze", filepath.Join(t.TempDir(), "missing"))
		if err == nil {
			t.Error("expected error for missing input")
		}
	})
}

// TestTablesCmd tests the tables command.
func TestTablesCmd(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	path := filepath.Join(in, "t.md")
	writeFile(t, path, "|a|b|\n|-|-|\n|1|\n")

	stdout, _, err := executeRoot(t, "tables", in, "--csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", stdout)
	}
	if lines[1] != path+",1,0,1," {
		t.Errorf("unexpected row %q", lines[1])
	}
}

// TestRunAndStatsCmd tests the pipeline run and the stats over its metrics.
func TestRunAndStatsCmd(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := t.TempDir()
	dbDir := t.TempDir()
	writeFile(t, filepath.Join(in, "a.md"), "Καλημέρα κόσμε\n|a|b|\n|-|-|\n|1|\n")

	_, stderr, err := executeRoot(t, "run", in, "-o", out, "--db-dir", dbDir, "--json")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(stderr, "Run ID:") {
		t.Errorf("expected run ID on stderr, got %q", stderr)
	}

	got, err := os.ReadFile(filepath.Join(out, "a.md"))
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if strings.Contains(string(got), "|1|") || !strings.Contains(string(got), cleaner.Marker) {
		t.Errorf("expected malformed table replaced by marker, got %q", got)
	}

	// The subtests share one database and run sequentially.
	t.Run("stats of latest run", func(t *testing.T) {
		stdout, _, err := executeRoot(t, "stats", "--db-dir", dbDir, "--json")
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		var dist model.BadnessDistribution
		if err := json.Unmarshal([]byte(stdout), &dist); err != nil {
			t.Fatalf("invalid JSON %q: %v", stdout, err)
		}
		if dist.Total != 1 || dist.Buckets[0] != 1 {
			t.Errorf("unexpected distribution: %+v", dist)
		}
	})

	t.Run("list runs", func(t *testing.T) {
		stdout, _, err := executeRoot(t, "stats", "--db-dir", dbDir, "--list", "--json")
		if err != nil {
			t.Fatalf("stats --list failed: %v", err)
		}
		var runs []store.Run
		if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
			t.Fatalf("invalid JSON %q: %v", stdout, err)
		}
		if len(runs) != 1 || runs[0].Kind != runKindPipeline || runs[0].FilesProcessed != 1 {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		_, _, err := executeRoot(t, "stats", "no-such-run", "--db-dir", dbDir)
		if !errors.Is(err, store.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

// TestRunCmdWithoutDB tests that --no-db leaves no database behind.
func TestRunCmdWithoutDB(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	dbDir := filepath.Join(t.TempDir(), "db")
	writeFile(t, filepath.Join(in, "a.md"), "text\n")

	if _, _, err := executeRoot(t, "run", in, "-o", t.TempDir(), "--db-dir", dbDir, "--no-db"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dbDir); !os.IsNotExist(err) {
		t.Error("expected no database directory")
	}
}

// TestStatsCmdWithoutDatabase tests stats on a directory without a database.
func TestStatsCmdWithoutDatabase(t *testing.T) {
	t.Parallel()

	if _, _, err := executeRoot(t, "stats", "--db-dir", t.TempDir()); err == nil {
		t.Error("expected error for missing database")
	}
}

// TestScriptsCmd tests the script listing.
func TestScriptsCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := executeRoot(t, "scripts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"CODE", "lat", "grc", "punct"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output %q", want, stdout)
		}
	}
	if strings.Contains(stdout, "unusual") {
		t.Error("did not expect unusual in listing")
	}
}
