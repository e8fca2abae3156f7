package core

import (
	"context"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Provisioning.CountMonths != 1 {
		t.Fatalf("expected one month default, got %d", cfg.Provisioning.CountMonths)
	}
	if cfg.Provisioning.PasswordLength != 12 {
		t.Fatalf("expected 12 char default, got %d", cfg.Provisioning.PasswordLength)
	}
}

func TestConfigValidateRejectsBlankServiceName(t *testing.T) {
	cfg := Config{ServiceName: "   "}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected blank service name to fail validation")
	}
}

func TestCfgxConfigProviderLoadsRawValues(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"service_name": "edge-provision",
		"platform": map[string]any{
			"endpoint":      "https://edge.example.com",
			"access_key_id": "key-id",
			"access_key":    "key-secret",
		},
	}})

	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "edge-provision" {
		t.Fatalf("expected loaded service name, got %q", cfg.ServiceName)
	}
	if cfg.Platform.Endpoint != "https://edge.example.com" {
		t.Fatalf("expected loaded endpoint, got %q", cfg.Platform.Endpoint)
	}
	if cfg.Provisioning.CountMonths != 1 {
		t.Fatalf("expected default count months to survive, got %d", cfg.Provisioning.CountMonths)
	}
}

func TestGoOptionsResolverRuntimeWins(t *testing.T) {
	defaults := DefaultConfig()
	loaded := DefaultConfig()
	loaded.Platform.Endpoint = "https://config.example.com"
	runtime := Config{}
	runtime.Platform.Endpoint = "https://runtime.example.com"

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Platform.Endpoint != "https://runtime.example.com" {
		t.Fatalf("expected runtime endpoint to win, got %q", resolved.Platform.Endpoint)
	}
	if resolved.ServiceName != "provision" {
		t.Fatalf("expected default service name, got %q", resolved.ServiceName)
	}
}

func TestConfigCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Platform = PlatformConfig{
		Endpoint:    "  https://edge.example.com  ",
		AccessKeyID: "key-id",
		AccessKey:   "key-secret",
		Debug:       true,
	}
	creds := cfg.Credentials()
	if creds.Endpoint != "https://edge.example.com" {
		t.Fatalf("expected trimmed endpoint, got %q", creds.Endpoint)
	}
	if !creds.Debug {
		t.Fatal("expected debug flag carried over")
	}
	if err := creds.Validate(); err != nil {
		t.Fatalf("expected valid credentials: %v", err)
	}
}
