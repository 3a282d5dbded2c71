package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestLoadServerConfig_DefaultEnvironment(t *testing.T) {
	os.Unsetenv("ENV")
	cfg := LoadServerConfig()
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected %q, got %q", EnvDevelopment, cfg.Environment)
	}
}

func TestLoadServerConfig_InvalidEnvironment(t *testing.T) {
	t.Setenv("ENV", "invalid")
	cfg := LoadServerConfig()
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected %q for invalid ENV, got %q", EnvDevelopment, cfg.Environment)
	}
}

func TestLoadServerConfig_ValidEnvironments(t *testing.T) {
	tests := []struct {
		env  string
		want Environment
	}{
		{"development", EnvDevelopment},
		{"staging", EnvStaging},
		{"production", EnvProduction},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			cfg := LoadServerConfig()
			if cfg.Environment != tt.want {
				t.Errorf("expected %q, got %q", tt.want, cfg.Environment)
			}
		})
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("TRACING_ENABLED", "")
	t.Setenv("TRACE_EXPORTER", "")

	cfg := LoadServerConfig()
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %q", cfg.LogLevel)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected 15s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.TracingEnabled {
		t.Error("expected tracing to be disabled by default")
	}
	if cfg.TraceExporter != "stdout" {
		t.Errorf("expected stdout exporter, got %q", cfg.TraceExporter)
	}
}

func TestLoadServerConfig_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("SHUTDOWN_TIMEOUT", "3")
	t.Setenv("TRACING_ENABLED", "yes")
	t.Setenv("TRACE_EXPORTER", "none")

	cfg := LoadServerConfig()
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Errorf("expected 127.0.0.1:9000, got %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.ShutdownTimeout)
	}
	if !cfg.TracingEnabled {
		t.Error("expected tracing to be enabled")
	}
	if cfg.TraceExporter != "none" {
		t.Errorf("expected none exporter, got %q", cfg.TraceExporter)
	}
}

func TestLoadServerConfig_InvalidShutdownTimeout(t *testing.T) {
	for _, val := range []string{"-1", "0", "abc"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv("SHUTDOWN_TIMEOUT", val)
			cfg := LoadServerConfig()
			if cfg.ShutdownTimeout != 15*time.Second {
				t.Errorf("expected fallback to 15s, got %v", cfg.ShutdownTimeout)
			}
		})
	}
}

func TestLoadStoreConfig(t *testing.T) {
	t.Run("table set", func(t *testing.T) {
		t.Setenv("LICENSES_TABLE", "Licenses")
		t.Setenv("DYNAMODB_ENDPOINT", "http://localhost:8000")

		cfg, err := LoadStoreConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TableName != "Licenses" {
			t.Errorf("expected table Licenses, got %q", cfg.TableName)
		}
		if cfg.Endpoint != "http://localhost:8000" {
			t.Errorf("expected endpoint override, got %q", cfg.Endpoint)
		}
	})

	t.Run("table missing", func(t *testing.T) {
		os.Unsetenv("LICENSES_TABLE")

		_, err := LoadStoreConfig()
		if !errors.Is(err, ErrMissingEnv) {
			t.Fatalf("expected ErrMissingEnv, got %v", err)
		}
	})

	t.Run("table empty", func(t *testing.T) {
		t.Setenv("LICENSES_TABLE", "")

		_, err := LoadStoreConfig()
		if !errors.Is(err, ErrMissingEnv) {
			t.Fatalf("expected ErrMissingEnv, got %v", err)
		}
	})
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"", true, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.val)
			if got := getEnvBool("TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}
