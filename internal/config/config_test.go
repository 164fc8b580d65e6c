package config

import (
	"reflect"
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	got := splitList(" +252630000001, ,+252630000002 ")
	want := []string{"+252630000001", "+252630000002"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if splitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestRabbitURLPrecedence(t *testing.T) {
	t.Setenv("AMQP_URL", "amqp://b")
	t.Setenv("RABBITMQ_URL", "amqp://a")
	if got := rabbitURL(); got != "amqp://a" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("RABBITMQ_URL", "")
	if got := rabbitURL(); got != "amqp://b" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 || cfg.RefillInterval != 2*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("ttl must be at least five intervals, got %s", cfg.TTL)
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled || !cfg.Methods["GET"] || cfg.TTL != 30*time.Second || cfg.Prefix != "ridecache" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
