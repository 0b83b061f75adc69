package internal

import (
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Rename.Mode != RenameModeDialog {
		t.Errorf("rename mode = %q, want dialog", cfg.Rename.Mode)
	}
	if cfg.Rename.BatchMode != RenameModeTemplate {
		t.Errorf("batch mode = %q, want template", cfg.Rename.BatchMode)
	}
	if cfg.Rename.Template != "image-{datetime}" {
		t.Errorf("template = %q", cfg.Rename.Template)
	}
	if cfg.Vision.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.Vision.Model)
	}
	if !cfg.Vision.Compress {
		t.Error("compression should default on")
	}
	if cfg.Local.Disposition != DispositionKeep {
		t.Errorf("disposition = %q, want keep", cfg.Local.Disposition)
	}
	if cfg.Language != "zh-cn" {
		t.Errorf("language = %q, want zh-cn", cfg.Language)
	}
}

func TestRenameConfig_RejectsUnknownMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Rename.Mode = "magic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown rename mode should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.Rename.BatchMode = "magic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown batch mode should fail validation")
	}
}

func TestRenameConfig_EmptyTemplate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Rename.Template = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty template should fail validation")
	}
}

func TestLocalConfig_RejectsUnknownDisposition(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Local.Disposition = "archive"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown disposition should fail validation")
	}
}

func TestLanguage_Normalized(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Language = "en-GB"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Language != "en" {
		t.Errorf("language = %q, want en", cfg.Language)
	}

	cfg.Language = "fr"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Language != "zh-cn" {
		t.Errorf("language = %q, want zh-cn fallback", cfg.Language)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 0 should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("port above 65535 should fail validation")
	}
}

func TestApplicationConfig_DebugForcesLevel(t *testing.T) {
	cfg := ApplicationConfig{LogLevel: slog.LevelInfo, Debug: true}
	if cfg.EffectiveLogLevel() != slog.LevelDebug {
		t.Errorf("debug flag should force debug level, got %v", cfg.EffectiveLogLevel())
	}
	cfg.Debug = false
	if cfg.EffectiveLogLevel() != slog.LevelInfo {
		t.Errorf("level = %v, want info", cfg.EffectiveLogLevel())
	}
}

func TestVisionConfig_Configured(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Vision.Configured() {
		t.Error("default config has no API key and must not count as configured")
	}
	cfg.Vision.APIKey = "sk-test"
	if !cfg.Vision.Configured() {
		t.Error("API key plus default endpoint should count as configured")
	}
}
