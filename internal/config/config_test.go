package config

import (
	"testing"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected default APP_ENV=dev, got %q", cfg.AppEnv)
	}
	if cfg.DocstoreDriver != DocstoreDriverMemory {
		t.Fatalf("expected default docstore driver memory, got %q", cfg.DocstoreDriver)
	}
	if !cfg.SeedDemoData {
		t.Fatalf("expected demo seed enabled outside prod")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected default HTTP addr %q", cfg.HTTPAddr)
	}
	if cfg.NotifyLeadWindow != 30*time.Minute {
		t.Fatalf("unexpected default notify lead window %s", cfg.NotifyLeadWindow)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected default log level %v", cfg.LogLevel)
	}
}

func TestLoad_ProdDisablesSeed(t *testing.T) {
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SeedDemoData {
		t.Fatalf("expected demo seed disabled in prod")
	}
}

func TestLoad_InvalidDocstoreDriver(t *testing.T) {
	t.Setenv("DOCSTORE_DRIVER", "dynamodb")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid DOCSTORE_DRIVER")
	}
}

func TestLoad_PushRequiresBaseURL(t *testing.T) {
	t.Setenv("PUSH_ENABLED", "true")
	t.Setenv("PUSH_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PUSH_ENABLED without PUSH_BASE_URL")
	}
}

func TestLoad_UptraceRequiresDSN(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED without UPTRACE_DSN")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://polla.club , ,http://localhost:5173 ")
	if len(got) != 2 {
		t.Fatalf("expected 2 origins, got %v", got)
	}
	if got[0] != "https://polla.club" || got[1] != "http://localhost:5173" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("warning") != logging.LevelWarn {
		t.Fatalf("expected warning to map to warn level")
	}
	if parseLogLevel("nonsense") != logging.LevelInfo {
		t.Fatalf("expected fallback to info level")
	}
}
