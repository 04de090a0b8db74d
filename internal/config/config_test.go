package config

import (
	"os"
	"testing"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 0},
		Index:   IndexConfig{Host: "http://localhost:7700"},
		Records: RecordsConfig{Addrs: []string{"localhost:6379"}},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingIndexHost(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Records: RecordsConfig{Addrs: []string{"localhost:6379"}},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing index host")
	}
}

func TestValidate_MissingRecordAddrs(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Index: IndexConfig{Host: "http://localhost:7700"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing record store addrs")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Index.ReadinessTimeout != 10 {
		t.Errorf("expected Index.ReadinessTimeout=10, got %d", cfg.Index.ReadinessTimeout)
	}
	if cfg.Records.ReadinessTimeout != 10 {
		t.Errorf("expected Records.ReadinessTimeout=10, got %d", cfg.Records.ReadinessTimeout)
	}
	if cfg.Records.KeyPrefix != "pagedex:" {
		t.Errorf("expected KeyPrefix='pagedex:', got %q", cfg.Records.KeyPrefix)
	}
	if cfg.Search.Parallelism != 4 {
		t.Errorf("expected Parallelism=4, got %d", cfg.Search.Parallelism)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Records: RecordsConfig{ReadinessTimeout: 15, KeyPrefix: "custom:"},
		Search:  SearchConfig{Parallelism: 8},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Records.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Records.KeyPrefix)
	}
	if cfg.Search.Parallelism != 8 {
		t.Errorf("expected Parallelism=8, got %d", cfg.Search.Parallelism)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PAGEDEX_TEST_HOST", "http://meili:7700")
	os.Unsetenv("PAGEDEX_TEST_MISSING")

	in := []byte("host: ${PAGEDEX_TEST_HOST}\nkey: ${PAGEDEX_TEST_MISSING:-fallback}\nempty: ${PAGEDEX_TEST_MISSING}")
	got := string(expandEnvVars(in))
	want := "host: http://meili:7700\nkey: fallback\nempty: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}
