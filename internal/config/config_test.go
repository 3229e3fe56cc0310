package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Region != "" {
		t.Errorf("expected empty Region, got %q", cfg.Region)
	}
	if got := cfg.EffectiveRegion(); got != DefaultRegion {
		t.Errorf("EffectiveRegion = %q, want %q", got, DefaultRegion)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exosync", "config.json")

	want := &Config{Region: "de-fra-1", Dialect: "legacy", LogLevel: "debug", LogFormat: "json"}
	if err := want.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	path := filepath.Join(dir, "config.json")

	cfg := &Config{Region: "de-fra-1"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify the file exists.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	first := &Config{Region: "de-fra-1"}
	if err := first.SaveTo(path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := &Config{Region: "at-vie-1"}
	if err := second.SaveTo(path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Region != "at-vie-1" {
		t.Errorf("expected Region %q, got %q", "at-vie-1", got.Region)
	}
}

func TestLoad_EmptyObjectUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{cfg.EffectiveRegion(), cfg.EffectiveDialect(), cfg.EffectiveLogLevel(), cfg.EffectiveLogFormat()}
	want := []string{DefaultRegion, DefaultDialect, DefaultLogLevel, DefaultLogFormat}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("effective values mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_OmitsEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := &Config{Dialect: "legacy"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "region") {
		t.Errorf("expected unset region to be omitted, got %s", data)
	}
	if !strings.Contains(string(data), `"dialect": "legacy"`) {
		t.Errorf("expected dialect in saved config, got %s", data)
	}
}
