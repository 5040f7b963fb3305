package cli

import (
	"strings"
	"testing"
)

func TestMethodsCommand(t *testing.T) {
	useTempConfig(t)

	var all struct {
		Methods []string `json:"methods"`
		Content string   `json:"content"`
	}
	decodeData(t, runJSON(t, methodsCmd), &all)
	if len(all.Methods) != 7 {
		t.Errorf("methods = %v", all.Methods)
	}

	var one struct {
		Content string `json:"content"`
	}
	decodeData(t, runJSON(t, methodsCmd, "seq"), &one)
	if !strings.Contains(one.Content, "--digits") || strings.Contains(one.Content, "--token-find") {
		t.Errorf("sequence section = %q", one.Content)
	}

	resp := runJSON(t, methodsCmd, "shuffle")
	if resp.OK || resp.Error.Code != ErrInvalidInput {
		t.Fatalf("expected %s, got %+v", ErrInvalidInput, resp)
	}
}
