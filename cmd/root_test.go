package cmd

import (
	"strings"
	"testing"

	ifconfig "github.com/ifregtest/ifregtest/internal/config"
	"github.com/ifregtest/ifregtest/internal/testfile"
)

func fileWithTests(names ...string) *testfile.File {
	f := &testfile.File{}
	for _, n := range names {
		f.Tests = append(f.Tests, &testfile.Test{Name: n})
	}
	return f
}

func TestSelectTestsNoPatternsReturnsAll(t *testing.T) {
	f := fileWithTests("basic_look", "basic_inventory", "advanced_combat")
	got, err := selectTests(f, nil)
	if err != nil {
		t.Fatalf("selectTests: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected all 3 tests, got %d", len(got))
	}
}

func TestSelectTestsGlobPattern(t *testing.T) {
	f := fileWithTests("basic_look", "basic_inventory", "advanced_combat")
	got, err := selectTests(f, []string{"basic_*"})
	if err != nil {
		t.Fatalf("selectTests: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(got), got)
	}
}

func TestSelectTestsDedupesAcrossPatterns(t *testing.T) {
	f := fileWithTests("basic_look", "basic_inventory")
	got, err := selectTests(f, []string{"basic_*", "*_look"})
	if err != nil {
		t.Fatalf("selectTests: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected no duplicate entries, got %d: %+v", len(got), got)
	}
}

func TestSelectTestsUnmatchedPatternSuggestsClosest(t *testing.T) {
	f := fileWithTests("basic_look", "basic_inventory")
	_, err := selectTests(f, []string{"basic_lok"})
	if err == nil {
		t.Fatal("expected an error for an unmatched pattern")
	}
	if !strings.Contains(err.Error(), "basic_look") {
		t.Fatalf("expected a did-you-mean suggestion naming basic_look, got %v", err)
	}
}

func TestResolveEnvMergesConfigBeforeFlag(t *testing.T) {
	oldEnv := flagEnv
	flagEnv = []string{"FOO=from-flag"}
	defer func() { flagEnv = oldEnv }()

	cfg := &ifconfig.Config{Env: []string{"FOO=from-config"}}
	env := resolveEnv(cfg)

	foundConfig, foundFlag := false, false
	for _, kv := range env {
		if kv == "FOO=from-config" {
			foundConfig = true
		}
		if kv == "FOO=from-flag" {
			foundFlag = true
		}
	}
	if !foundConfig || !foundFlag {
		t.Fatalf("expected both config and flag env entries present, got %v", env)
	}
}
