package redis

import (
	"context"
	"testing"

	"github.com/yi-nology/showcase/pkg/config"
)

func TestNewClientDisabled(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client when redis is disabled")
	}
}

func TestKey(t *testing.T) {
	if got := Key("ratelimit", "login", "10.0.0.1"); got != "showcase:ratelimit:login:10.0.0.1" {
		t.Fatalf("unexpected key %q", got)
	}
}
