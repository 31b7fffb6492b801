package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConfig struct {
	Port int `yaml:"port"`
}

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return os.ErrInvalid
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "name: md2conf\nport: 8080\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "md2conf" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_SERVICE_NAME", "from-env")
	path := writeConfig(t, "name: ${TEST_SERVICE_NAME}\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("Name = %q, want expansion from the environment", cfg.Name)
	}
}

func TestLoad_Validation(t *testing.T) {
	path := writeConfig(t, "port: 0\n")
	var cfg validatedConfig
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected validation failure")
	}

	path = writeConfig(t, "port: 9000\n")
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	fallback := writeConfig(t, "name: fallback\n")
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	var cfg testConfig
	if err := LoadWithDefaults(missing, fallback, &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Name != "fallback" {
		t.Errorf("Name = %q, want the default file to be used", cfg.Name)
	}

	if err := LoadWithDefaults(missing, "", &cfg); err == nil {
		t.Fatal("expected an error when no default file exists")
	}
}
