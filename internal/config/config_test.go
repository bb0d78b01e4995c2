package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default API URL, got %q", cfg.APIURL)
	}
	if cfg.SectionLabel != DefaultSectionLabel {
		t.Fatalf("expected default section label, got %q", cfg.SectionLabel)
	}
	if cfg.LaunchMatch != LaunchMatchExact {
		t.Fatalf("expected exact launch match default, got %q", cfg.LaunchMatch)
	}
	if cfg.CommentLimit != DefaultCommentLimit {
		t.Fatalf("expected comment limit %d, got %d", DefaultCommentLimit, cfg.CommentLimit)
	}
	if cfg.FetchWorkers != DefaultFetchWorkers {
		t.Fatalf("expected fetch workers %d, got %d", DefaultFetchWorkers, cfg.FetchWorkers)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte(`workspace_gid = "111"
section_label = "critical milestones"
launch_match = "substring"
comment_limit = 6
draft_patterns = ["zz draft"]
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configDirEnvKey, dir)
	t.Setenv("PULSE_WORKSPACE_GID", "222")
	t.Setenv("PULSE_WEBHOOK_URL", "https://hooks.example/T123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkspaceGID != "222" {
		t.Fatalf("expected env override workspace 222, got %q", cfg.WorkspaceGID)
	}
	if cfg.SectionLabel != "critical milestones" {
		t.Fatalf("expected section label from file, got %q", cfg.SectionLabel)
	}
	if cfg.LaunchMatch != LaunchMatchSubstring {
		t.Fatalf("expected substring launch match, got %q", cfg.LaunchMatch)
	}
	if cfg.CommentLimit != 6 {
		t.Fatalf("expected comment limit 6, got %d", cfg.CommentLimit)
	}
	if cfg.WebhookURL != "https://hooks.example/T123" {
		t.Fatalf("expected webhook from env, got %q", cfg.WebhookURL)
	}
	if len(cfg.DraftPatterns) != 1 || cfg.DraftPatterns[0] != "zz draft" {
		t.Fatalf("unexpected draft patterns %v", cfg.DraftPatterns)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	t.Setenv(configDirEnvKey, t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("defaults should be preserved, got %q", cfg.APIURL)
	}
}

func TestValidateReport(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv(tokenEnvKey, "")
		cfg := Default()
		cfg.WorkspaceGID = "111"
		if err := cfg.ValidateReport(); err == nil {
			t.Fatal("expected error for missing token")
		}
	})

	t.Run("missing workspace and portfolio", func(t *testing.T) {
		t.Setenv(tokenEnvKey, "tok")
		cfg := Default()
		if err := cfg.ValidateReport(); err == nil {
			t.Fatal("expected error for missing workspace/portfolio")
		}
	})

	t.Run("bad launch match", func(t *testing.T) {
		t.Setenv(tokenEnvKey, "tok")
		cfg := Default()
		cfg.WorkspaceGID = "111"
		cfg.LaunchMatch = "fuzzy"
		if err := cfg.ValidateReport(); err == nil {
			t.Fatal("expected error for invalid launch_match")
		}
	})

	t.Run("valid", func(t *testing.T) {
		t.Setenv(tokenEnvKey, "tok")
		cfg := Default()
		cfg.PortfolioGID = "999"
		if err := cfg.ValidateReport(); err != nil {
			t.Fatalf("expected valid config, got %v", err)
		}
	})
}

func TestValidateListen(t *testing.T) {
	t.Setenv(tokenEnvKey, "tok")
	cfg := Default()
	if err := cfg.ValidateListen(); err == nil {
		t.Fatal("expected error for missing roster path")
	}
	cfg.RosterPath = "/etc/pulse/roster.yaml"
	if err := cfg.ValidateListen(); err != nil {
		t.Fatalf("expected valid listen config, got %v", err)
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range allowedKeys {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	if IsAllowedKey("invalid") {
		t.Fatal("expected 'invalid' to not be allowed")
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)

	if err := SetKey(path, "comment_limit", "6"); err != nil {
		t.Fatalf("set comment_limit: %v", err)
	}
	if err := SetKey(path, "draft_patterns", "draft, zz template"); err != nil {
		t.Fatalf("set draft_patterns: %v", err)
	}
	if err := SetKey(path, "launch_match", "substring"); err != nil {
		t.Fatalf("set launch_match: %v", err)
	}

	cfg := Default()
	if _, err := loadFileIfExists(path, &cfg); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.CommentLimit != 6 {
		t.Fatalf("expected comment limit 6, got %d", cfg.CommentLimit)
	}
	if len(cfg.DraftPatterns) != 2 || cfg.DraftPatterns[1] != "zz template" {
		t.Fatalf("unexpected draft patterns %v", cfg.DraftPatterns)
	}
	if cfg.LaunchMatch != LaunchMatchSubstring {
		t.Fatalf("expected substring, got %q", cfg.LaunchMatch)
	}
}

func TestSetKeyRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	if err := SetKey(path, "comment_limit", "zero"); err == nil {
		t.Fatal("expected error for non-numeric comment_limit")
	}
	if err := SetKey(path, "launch_match", "fuzzy"); err == nil {
		t.Fatal("expected error for invalid launch_match")
	}
	if err := SetKey(path, "unknown", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
