//go:build integration

package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aidanlsb/rnm/internal/testutil"
)

func TestIntegration_ReplaceApplyAndUndo(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).
		WithFiles("IMG_001.jpg", "IMG_002.jpg").
		WithFile("notes.txt", "keep").
		Build()

	preview := tr.RunCLI("preview", "--find", "IMG_", "--replace", "rome_").MustSucceed(t)
	if items := preview.Plan(t).Items; len(items) != 2 {
		t.Fatalf("preview items = %+v", items)
	}
	tr.AssertNames(".", "IMG_001.jpg", "IMG_002.jpg", "notes.txt")

	applied := tr.RunCLI("apply", "--last", "--confirm").MustSucceed(t)
	applied.AssertNoWarnings(t)
	applied.AssertRenamed(t, "IMG_001.jpg", "rome_001.jpg", "IMG_002.jpg", "rome_002.jpg")
	tr.AssertNames(".", "notes.txt", "rome_001.jpg", "rome_002.jpg")
	tr.AssertContent("rome_001.jpg", "IMG_001.jpg")

	undone := tr.RunCLI("undo", "--confirm").MustSucceed(t)
	undone.AssertRenamed(t, "rome_001.jpg", "IMG_001.jpg", "rome_002.jpg", "IMG_002.jpg")
	tr.AssertNames(".", "IMG_001.jpg", "IMG_002.jpg", "notes.txt")

	var hist struct {
		Batches []json.RawMessage `json:"batches"`
	}
	tr.RunCLI("history").MustSucceed(t).Decode(t, &hist)
	if len(hist.Batches) != 2 {
		t.Errorf("history has %d batches", len(hist.Batches))
	}

	var detail struct {
		Audit []struct {
			Op string `json:"op"`
		} `json:"audit"`
	}
	tr.RunCLI("history", strconv.FormatInt(applied.Batch(t).Batch, 10)).MustSucceed(t).Decode(t, &detail)
	if len(detail.Audit) != 3 || detail.Audit[2].Op != "undo" {
		t.Errorf("audit = %+v", detail.Audit)
	}
	if _, err := os.Stat(filepath.Join(tr.ConfigDir(), "audit.log")); err != nil {
		t.Errorf("audit log: %v", err)
	}
}

func TestIntegration_SequenceAcrossFolders(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).
		WithFiles("a/file10.txt", "a/file2.txt", "b/x.txt").
		Build()

	result := tr.RunCLI("apply", "-m", "sequence", "--digits", "2", "--seq-mode", "suffix", "--per-folder", "-r", "--confirm").MustSucceed(t)
	result.AssertRenamed(t, "file2.txt", "file2_01.txt", "file10.txt", "file10_02.txt", "x.txt", "x_01.txt")
	tr.AssertNames("a", "file10_02.txt", "file2_01.txt")
	tr.AssertNames("b", "x_01.txt")
}

func TestIntegration_FolderScope(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).
		WithFiles("draft one/a.txt", "draft two/b.txt").
		Build()

	result := tr.RunCLI("apply", "--scope", "folder", "--find", "draft", "--replace", "final", "--confirm", "draft one/a.txt", "draft two")
	result.AssertRenamed(t, "draft one", "final one", "draft two", "final two")
	tr.AssertNames(".", "final one", "final two")
	tr.AssertExists("final one/a.txt")
}

func TestIntegration_NestedFolders(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).
		WithDir("a/b/c").
		WithFile("a/b/c/f.txt", "f").
		Build()

	result := tr.RunCLI("apply", "--scope", "folder", "-m", "add-text", "--text", "_x", "--text-pos", "suffix", "--confirm", "a", "a/b", "a/b/c")
	result.AssertRenamed(t, "a", "a_x", "b", "b_x", "c", "c_x")
	tr.AssertContent("a_x/b_x/c_x/f.txt", "f")
	tr.AssertNotExists("a")

	tr.RunCLI("undo", "--confirm").MustSucceed(t)
	tr.AssertContent("a/b/c/f.txt", "f")
}

func TestIntegration_MoveToken(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).
		WithFiles("2025 report final.pdf").
		Build()

	result := tr.RunCLI("apply", "-m", "move-token", "--token-find", "2025", "--token-pos", "end", "--sep", "space", "--confirm")
	result.AssertRenamed(t, "2025 report final.pdf", "report final 2025.pdf")
}

func TestIntegration_ApplyWithoutConfirm(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).WithFiles("a.txt").Build()

	result := tr.RunCLI("apply", "-m", "add-text", "--text", "x_").MustFail(t, "CONFIRMATION_REQUIRED")
	result.AssertSuggests(t, "--confirm", "--text x_")
	tr.AssertNames(".", "a.txt")
}

func TestIntegration_InvalidSettings(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).WithFiles("a.txt").Build()

	tr.RunCLI("preview", "-m", "move-token", "--token-find", "([", "--regex").MustFail(t, "INVALID_SETTINGS")

	// Move patterns are ignored by other methods.
	tr.RunCLI("preview", "-m", "add-text", "--text", "x_", "--token-find", "([", "--regex").MustSucceed(t)
}

func TestIntegration_ConfigDisablesMemory(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestTree(t).
		WithFiles("a.txt").
		WithConfig("remember_settings = false\n").
		Build()

	tr.RunCLI("preview", "-m", "add-text", "--text", "x_").MustSucceed(t)

	// Without remembered settings the default replace method changes nothing.
	result := tr.RunCLI("preview").MustSucceed(t)
	if items := result.Plan(t).Items; len(items) != 0 {
		t.Errorf("items = %+v", items)
	}
	result.AssertHasWarning(t, "NOTHING_TO_DO")
}
