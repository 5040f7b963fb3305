package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/rnm/internal/config"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	os.Stdout = w

	outputCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		var buf bytes.Buffer
		_, copyErr := io.Copy(&buf, r)
		_ = r.Close()
		if copyErr != nil {
			errCh <- copyErr
			return
		}
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = orig
	_ = w.Close()
	select {
	case err := <-errCh:
		t.Fatalf("io.Copy: %v", err)
		return ""
	case output := <-outputCh:
		return output
	}
}

// useTempConfig points the package globals at an isolated config directory
// and JSON output, restoring them when the test ends.
func useTempConfig(t *testing.T) string {
	t.Helper()

	prevConfig, prevCfg, prevPaths, prevJSON, prevFs := configPath, cfg, paths, jsonOutput, fsys
	t.Cleanup(func() {
		configPath, cfg, paths, jsonOutput, fsys = prevConfig, prevCfg, prevPaths, prevJSON, prevFs
	})

	configPath = filepath.Join(t.TempDir(), "config.toml")
	cfg = &config.Config{}
	paths = config.ResolvePaths(configPath, cfg)
	jsonOutput = true
	fsys = afero.NewOsFs()
	return configPath
}

// setFlags sets flags on cmd for one test and resets every flag afterwards.
func setFlags(t *testing.T, cmd *cobra.Command, kv ...string) {
	t.Helper()
	t.Cleanup(func() { resetFlags(cmd) })
	for i := 0; i+1 < len(kv); i += 2 {
		if err := cmd.Flags().Set(kv[i], kv[i+1]); err != nil {
			t.Fatalf("set --%s=%s: %v", kv[i], kv[i+1], err)
		}
	}
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

type testResponse struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
}

// runJSON runs cmd.RunE and decodes its JSON envelope.
func runJSON(t *testing.T, cmd *cobra.Command, args ...string) testResponse {
	t.Helper()
	out := captureStdout(t, func() {
		if err := cmd.RunE(cmd, args); err != nil {
			t.Fatalf("%s: %v", cmd.Name(), err)
		}
	})
	var resp testResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("%s: invalid JSON %q: %v", cmd.Name(), out, err)
	}
	return resp
}

func decodeData(t *testing.T, resp testResponse, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", resp.Data, err)
	}
}

func writeTree(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func assertNames(t *testing.T, dir string, want ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	if len(got) != len(want) {
		t.Fatalf("entries of %s = %v, want %v", dir, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries of %s = %v, want %v", dir, got, want)
		}
	}
}
