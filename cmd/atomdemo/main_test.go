package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/atom/internal/config"
	apperrors "github.com/vango-dev/atom/internal/errors"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestInitWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()

	if err := execute(t, "init", "--dir", dir, "--format", "yaml"); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Form.Fields != config.DefaultFields {
		t.Errorf("fields=%d, want %d", cfg.Form.Fields, config.DefaultFields)
	}
	if filepath.Base(cfg.Path()) != "atomdemo.yaml" {
		t.Errorf("loaded %s", cfg.Path())
	}

	err = execute(t, "init", "--dir", dir, "--format", "yaml")
	var e *apperrors.Error
	if !errors.As(err, &e) || e.Category != apperrors.CategoryCLI {
		t.Errorf("expected refusal to overwrite, got %v", err)
	}
	if err := execute(t, "init", "--dir", dir, "--format", "yaml", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	if err := execute(t, "init", "--dir", t.TempDir(), "--format", "toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoadConfigOverridesAndValidates(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig(&globalFlags{dir: dir, logLevel: "debug"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level=%q, want debug", cfg.Log.Level)
	}

	_, err = loadConfig(&globalFlags{dir: dir, logLevel: "loud"})
	var e *apperrors.Error
	if !errors.As(err, &e) || e.Code != "E105" {
		t.Errorf("expected E105, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	_, err := loadConfig(&globalFlags{configPath: path})
	var e *apperrors.Error
	if !errors.As(err, &e) || e.Code != "E101" {
		t.Errorf("expected E101, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("loadConfig must not create files")
	}
}

func TestBenchCommand(t *testing.T) {
	if err := execute(t, "bench", "--dir", t.TempDir(), "--fields", "20", "--edits", "10"); err != nil {
		t.Errorf("bench: %v", err)
	}
}
