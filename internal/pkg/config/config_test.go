package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Port != "3000" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: port=%q env=%q", cfg.Port, cfg.Env)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.Mongo.Database != "psychology_clinic" {
		t.Fatalf("unexpected database: %q", cfg.Mongo.Database)
	}
	if cfg.GitHubEnabled() {
		t.Fatal("github should be disabled without credentials")
	}
	if cfg.RabbitMQ.Exchange != "clinic.events" {
		t.Fatalf("unexpected exchange: %q", cfg.RabbitMQ.Exchange)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                 "8080",
		"CORS_ORIGINS":         "https://a.example.com,https://b.example.com",
		"GITHUB_CLIENT_ID":     "id",
		"GITHUB_CLIENT_SECRET": "secret",
		"REDIS_DB":             "2",
		"SESSION_TTL":          "30m",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Redis.DB != 2 || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSOrigins)
	}
	if !cfg.GitHubEnabled() {
		t.Fatal("github should be enabled")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil {
		t.Fatal("expected error for default secret in production")
	}

	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":            "production",
		"SESSION_SECRET": "a-real-secret",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production")
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{SessionTTL: time.Hour, EventWorkers: 0, AuthRateLimit: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
