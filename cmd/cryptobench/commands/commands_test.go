// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
)

// testEnvironment writes a configuration rooted in a temporary
// directory with small intervals and no cycle counter.
type testEnvironment struct {
	dir        string
	configPath string
}

func newTestEnvironment(t *testing.T) testEnvironment {
	t.Helper()
	dir := t.TempDir()
	content := `paths:
  root: ` + dir + `
  reports: ` + filepath.Join(dir, "reports") + `
  database: ` + filepath.Join(dir, "results.db") + `
sampling:
  interval: 5ms
  memory_interval: 5ms
  stop_timeout: 2s
  cycle_counter: false
defaults:
  algorithm: AES_GCM
  volume: 2
  seed: 7
store:
  compression: lz4
export:
  prometheus_textfile: ` + filepath.Join(dir, "metrics", "cryptobench.prom") + `
log_level: error
`
	path := filepath.Join(dir, "cryptobench.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return testEnvironment{dir: dir, configPath: path}
}

func (e testEnvironment) session() sessionParams {
	return sessionParams{ConfigPath: e.configPath}
}

func TestRunSingleUsesConfiguredDefaults(t *testing.T) {
	env := newTestEnvironment(t)
	var output bytes.Buffer
	params := runParams{sessionParams: env.session()}
	params.OutputJSON = true

	if err := runSingle(context.Background(), params, "", nil, &output); err != nil {
		t.Fatalf("runSingle: %v", err)
	}

	var result struct {
		evaluation.Evaluation
		Published published `json:"published"`
	}
	if err := json.Unmarshal(output.Bytes(), &result); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, output.String())
	}
	if result.Algorithm != algorithm.AESGCM || result.Volume != 2 || result.Seed != 7 {
		t.Errorf("evaluation = %s/%d/%d, want AES_GCM/2/7", result.Algorithm, result.Volume, result.Seed)
	}
	if result.Status != evaluation.StatusSuccess {
		t.Fatalf("status = %s (%s)", result.Status, result.Notes)
	}
	if !result.Published.Stored {
		t.Error("evaluation was not stored")
	}
	if len(result.Published.Reports) != 1 {
		t.Fatalf("reports = %v, want one Markdown file", result.Published.Reports)
	}
	if _, err := os.Stat(result.Published.Reports[0]); err != nil {
		t.Errorf("report: %v", err)
	}

	textfile, err := os.ReadFile(filepath.Join(env.dir, "metrics", "cryptobench.prom"))
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	if !strings.Contains(string(textfile), `cryptobench_evaluations_total{algorithm="AES_GCM",status="success"} 1`) {
		t.Errorf("textfile missing evaluation counter:\n%s", textfile)
	}

	var listing bytes.Buffer
	listParams := historyListParams{sessionParams: env.session(), Limit: 10}
	listParams.OutputJSON = true
	if err := runHistoryList(context.Background(), listParams, &listing); err != nil {
		t.Fatalf("runHistoryList: %v", err)
	}
	if !strings.Contains(listing.String(), result.ID) {
		t.Errorf("history list does not contain %s:\n%s", result.ID, listing.String())
	}

	var dump bytes.Buffer
	showParams := historyShowParams{sessionParams: env.session(), Dump: true}
	if err := runHistoryShow(context.Background(), showParams, result.ID, &dump); err != nil {
		t.Fatalf("runHistoryShow --dump: %v", err)
	}
	if !strings.Contains(dump.String(), `"algorithm"`) || !strings.Contains(dump.String(), `"AES_GCM"`) {
		t.Errorf("diagnostic dump missing algorithm:\n%s", dump.String())
	}
}

func TestRunSingleRejectsBadInput(t *testing.T) {
	env := newTestEnvironment(t)
	tests := []struct {
		name  string
		alg   string
		flags []string
		is    error
	}{
		{name: "unknown algorithm", alg: "DES", is: algorithm.ErrUnknown},
		{name: "zero volume", alg: "AES_GCM", flags: []string{"--volume", "0"}, is: algorithm.ErrInvalidVolume},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var params runParams
			flags := cli.FlagsFromParams("run", &params)
			if err := flags.Parse(append([]string{"--config", env.configPath}, test.flags...)); err != nil {
				t.Fatal(err)
			}
			err := runSingle(context.Background(), params, test.alg, flags, &bytes.Buffer{})
			if !errors.Is(err, test.is) {
				t.Errorf("runSingle = %v, want %v", err, test.is)
			}
		})
	}
}

func TestScaleAndShowSeries(t *testing.T) {
	env := newTestEnvironment(t)
	var output bytes.Buffer
	params := scaleParams{sessionParams: env.session(), Volumes: []int{1, 2}}
	params.NoReport = true

	if err := runScale(context.Background(), params, "X25519", nil, &output); err != nil {
		t.Fatalf("runScale: %v\n%s", err, output.String())
	}
	text := output.String()
	if !strings.Contains(text, "X25519") || !strings.Contains(text, "success 100%") {
		t.Errorf("scale output:\n%s", text)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "reports")); err != nil {
		t.Errorf("reports directory: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(env.dir, "reports"))
	if len(entries) != 0 {
		t.Errorf("--no-report wrote %d files", len(entries))
	}
}

func TestScaleRejectsEmptyVolumes(t *testing.T) {
	env := newTestEnvironment(t)
	params := scaleParams{sessionParams: env.session()}
	err := runScale(context.Background(), params, "X25519", nil, &bytes.Buffer{})
	if !errors.Is(err, evaluation.ErrNoVolumes) {
		t.Errorf("runScale = %v, want ErrNoVolumes", err)
	}
}

func TestSelectAlgorithms(t *testing.T) {
	all, err := selectAlgorithms(nil, true)
	if err != nil || len(all) != len(algorithm.All()) {
		t.Errorf("selectAlgorithms(all) = %v, %v", all, err)
	}
	if _, err := selectAlgorithms([]string{"Age"}, true); err == nil {
		t.Error("--all with names succeeded")
	}
	if _, err := selectAlgorithms(nil, false); !errors.Is(err, evaluation.ErrNoAlgorithms) {
		t.Errorf("empty selection = %v, want ErrNoAlgorithms", err)
	}
	got, err := selectAlgorithms([]string{"age", "x25519"}, false)
	if err != nil || len(got) != 2 || got[0] != algorithm.Age || got[1] != algorithm.X25519 {
		t.Errorf("selectAlgorithms = %v, %v", got, err)
	}
}

func TestPlanDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.jsonc")
	content := `{
  "seed": 3,
  // two runs
  "runs": [
    {"kind": "single", "algorithm": "AES_GCM", "volume": 5},
    {"kind": "series", "algorithm": "Age", "volumes": [1, 2], "seed": 9},
  ],
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var output bytes.Buffer
	if err := runPlan(context.Background(), planParams{DryRun: true}, path, &output); err != nil {
		t.Fatalf("runPlan: %v", err)
	}
	for _, want := range []string{"AES_GCM", "Age", "1,2", "9"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("dry run output missing %q:\n%s", want, output.String())
		}
	}
}

func TestPlanRejectsInvalidPlanBeforeRunning(t *testing.T) {
	env := newTestEnvironment(t)
	path := filepath.Join(env.dir, "bad.jsonc")
	if err := os.WriteFile(path, []byte(`{"runs": [{"kind": "single", "algorithm": "DES", "volume": 1}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	err := runPlan(context.Background(), planParams{sessionParams: env.session()}, path, &bytes.Buffer{})
	if !errors.Is(err, algorithm.ErrUnknown) {
		t.Errorf("runPlan = %v, want ErrUnknown", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.dir, "results.db")); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("invalid plan opened the result store: %v", statErr)
	}
}

func TestHistoryShowUnknownID(t *testing.T) {
	env := newTestEnvironment(t)
	// A run creates the database.
	params := runParams{sessionParams: env.session()}
	params.NoReport = true
	if err := runSingle(context.Background(), params, "", nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("runSingle: %v", err)
	}

	err := runHistoryShow(context.Background(), historyShowParams{sessionParams: env.session()}, "nope", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), `"nope"`) {
		t.Errorf("runHistoryShow = %v, want not found", err)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	env := newTestEnvironment(t)
	err := runHistoryList(context.Background(), historyListParams{sessionParams: env.session()}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "result store") {
		t.Errorf("runHistoryList = %v, want missing store error", err)
	}
}

func TestHistoryListRejectsUnknownStatus(t *testing.T) {
	env := newTestEnvironment(t)
	err := runHistoryList(context.Background(), historyListParams{sessionParams: env.session(), Status: "partial"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), `unknown status "partial"`) {
		t.Errorf("runHistoryList = %v", err)
	}
}

func TestListAlgorithms(t *testing.T) {
	var output bytes.Buffer
	if err := listAlgorithms(algorithmsParams{}, &output); err != nil {
		t.Fatalf("listAlgorithms: %v", err)
	}
	for _, name := range algorithm.Names() {
		if !strings.Contains(output.String(), name) {
			t.Errorf("listing missing %s:\n%s", name, output.String())
		}
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sampling:\n  interval: -1s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "sampling.interval") {
		t.Errorf("loadConfig = %v, want interval error", err)
	}
}

func TestRootHasEveryCommand(t *testing.T) {
	root := Root()
	want := []string{"run", "scale", "compare", "plan", "history", "algorithms", "overhead", "neutrality", "audit", "version"}
	names := make(map[string]bool)
	for _, command := range root.Subcommands {
		names[command.Name] = true
		if command.Summary == "" {
			t.Errorf("%s has no summary", command.Name)
		}
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("missing command %q", name)
		}
	}
}
