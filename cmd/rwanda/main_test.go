package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDataset = `
North:
  Musanze:
    Muhoza:
      Cyabagarura: [Bukane, Gakoro]
      Ruhengeri: []
      Kigombe: ~
    Cyuve: [Buruba, Kabeza]
South:
  Huye: [Ngoma, Tumba]
`

// execute runs the root command with args and returns what it printed
// to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, args...)
	return out, err
}

func executeWithStderr(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	if err := os.WriteFile(path, []byte(testDataset), 0o600); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	return path
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestProvinces_Embedded(t *testing.T) {
	out, err := execute(t, "provinces")
	if err != nil {
		t.Fatalf("provinces: %v", err)
	}
	got := strings.Join(lines(out), ",")
	if got != "East,Kigali,North,South,West" {
		t.Errorf("provinces = %q", got)
	}
}

func TestLevelCommands(t *testing.T) {
	dataset := writeDataset(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"districts", []string{"districts"}, []string{"Musanze", "Huye"}},
		{"sectors in north", []string{"sectors", "--province", "north"}, []string{"Muhoza", "Cyuve"}},
		{"cells", []string{"cells", "--sector", "MUHOZA"}, []string{"Cyabagarura", "Ruhengeri", "Kigombe"}},
		{"villages", []string{"villages", "--cell", "cyabagarura"}, []string{"Bukane", "Gakoro"}},
		{"villages of empty cell", []string{"villages", "--cell", "Ruhengeri"}, nil},
		{"sectors listed as sequence", []string{"sectors", "--district", "huye"}, []string{"Ngoma", "Tumba"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--dataset", dataset)...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			got := lines(out)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelCommands_Unresolved(t *testing.T) {
	out, err := execute(t, "cells", "--province", "Kigali", "--district", "Atlantis")
	if err == nil {
		t.Fatalf("expected error, got output %q", out)
	}
	if !errors.Is(err, errUnresolved) {
		t.Errorf("error = %v, want errUnresolved", err)
	}
	if !strings.Contains(err.Error(), `district="Atlantis"`) {
		t.Errorf("error %q does not name the filter", err)
	}
}

func TestLevelCommands_AncestorFlagsOnly(t *testing.T) {
	if _, err := execute(t, "provinces", "--province", "Kigali"); err == nil {
		t.Error("provinces accepted a --province flag")
	}
	if _, err := execute(t, "sectors", "--sector", "Kimironko"); err == nil {
		t.Error("sectors accepted a --sector flag")
	}
}

func TestLevelCommands_JSON(t *testing.T) {
	out, err := execute(t, "districts", "--province", "kigali", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var resp struct {
		Level string   `json:"level"`
		Names []string `json:"names"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if resp.Level != "district" || resp.Count != 3 {
		t.Errorf("response = %+v", resp)
	}
	if strings.Join(resp.Names, ",") != "Gasabo,Kicukiro,Nyarugenge" {
		t.Errorf("names = %v", resp.Names)
	}
}

func TestSearch(t *testing.T) {
	out, err := execute(t, "search", "nyarugenge", "--level", "districts")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	got := lines(out)
	if len(got) != 1 {
		t.Fatalf("search output = %v, want one line", got)
	}
	if !strings.Contains(got[0], "RW-KIGALI-NYARUGENGE") {
		t.Errorf("search line = %q", got[0])
	}
}

func TestSearch_Limit(t *testing.T) {
	out, err := execute(t, "search", "a", "--limit", "2")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := lines(out); len(got) != 2 {
		t.Errorf("search returned %d lines, want 2", len(got))
	}
}

func TestSearch_BadLevel(t *testing.T) {
	if _, err := execute(t, "search", "kigali", "--level", "county"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := execute(t, "search"); err == nil {
		t.Error("expected error without a query")
	}
}

func TestStats(t *testing.T) {
	out, err := execute(t, "stats", "--dataset", writeDataset(t), "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats struct {
		Counts   map[string]int  `json:"counts"`
		Complete map[string]bool `json:"complete"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	want := map[string]int{"provinces": 2, "districts": 2, "sectors": 4, "cells": 5, "villages": 2}
	for k, v := range want {
		if stats.Counts[k] != v {
			t.Errorf("counts[%s] = %d, want %d", k, stats.Counts[k], v)
		}
	}
	if !stats.Complete["sectors"] || stats.Complete["cells"] || stats.Complete["villages"] {
		t.Errorf("complete = %v", stats.Complete)
	}
}

func TestExport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rwanda.sql")
	if _, err := execute(t, "export", "--dataset", writeDataset(t), "--out", path, "--table", "divisions"); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	sql := string(data)
	if !strings.Contains(sql, "divisions") {
		t.Error("export does not use the requested table name")
	}
	if !strings.Contains(sql, "'Cyabagarura'") {
		t.Error("export is missing a cell")
	}
}

func TestExport_InvalidTable(t *testing.T) {
	if _, err := execute(t, "export", "--table", "drop table;"); err == nil {
		t.Error("expected error for invalid table name")
	}

	path := filepath.Join(t.TempDir(), "rwanda.sql")
	if _, err := execute(t, "export", "--table", "drop table;", "--out", path); err == nil {
		t.Error("expected error for invalid table name")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("export left %s behind after failing: %v", path, err)
	}
}

func TestExport_UnwritableOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "rwanda.sql")
	if _, err := execute(t, "export", "--out", path); err == nil {
		t.Error("expected error for an output path in a missing directory")
	}
}

func TestLevelCommands_IncompleteWarning(t *testing.T) {
	dataset := writeDataset(t)

	out, stderr, err := executeWithStderr(t, "villages", "--sector", "Muhoza", "--cell", "Kigombe", "--dataset", dataset)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "" {
		t.Errorf("output = %q, want none", out)
	}
	if !strings.Contains(stderr, "does not list every village") {
		t.Errorf("stderr = %q, want an incomplete-data warning", stderr)
	}

	_, stderr, err = executeWithStderr(t, "villages", "--province", "North", "--district", "Musanze",
		"--sector", "Muhoza", "--cell", "Ruhengeri", "--dataset", dataset)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stderr != "" {
		t.Errorf("stderr = %q for a cell recorded without villages", stderr)
	}
}

func TestLevelCommands_JSONReportsCompleteness(t *testing.T) {
	out, err := execute(t, "cells", "--province", "East", "--district", "Bugesera", "--sector", "Gashora", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var resp struct {
		Names    []string `json:"names"`
		Complete bool     `json:"complete"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if resp.Complete {
		t.Error("complete = true for a sector listed without cells")
	}
}

func TestImport_CSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rwanda.csv")
	csv := "province,district,sector,cell,village\nNorth,Musanze,Muhoza,Cyabagarura,Bukane\nNorth,Musanze,Muhoza,Cyabagarura,Gakoro\n"
	if err := os.WriteFile(src, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "rwanda.yaml")

	if _, err := execute(t, "import", src, "--out", dst); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, err := execute(t, "villages", "--cell", "cyabagarura", "--dataset", dst)
	if err != nil {
		t.Fatalf("villages: %v", err)
	}
	if got := strings.Join(lines(out), ","); got != "Bukane,Gakoro" {
		t.Errorf("villages from imported dataset = %q", got)
	}
}

func TestImport_Invalid(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(src, []byte("district\nMusanze\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(t.TempDir(), "out.yaml")
	if _, err := execute(t, "import", src, "--out", dst); err == nil {
		t.Error("expected error for a csv without a province column")
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Error("import created the output file despite failing")
	}
}

func TestDatasetMissing(t *testing.T) {
	if _, err := execute(t, "provinces", "--dataset", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing dataset")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "rwanda version ") {
		t.Errorf("version output = %q", out)
	}
}
