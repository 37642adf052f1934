// Package ratelimit implements per-client request limits such as
// "5 per minute", backed by process memory or Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	rediskey "github.com/yi-nology/showcase/pkg/redis"
)

// Rule allows Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

func (r Rule) String() string {
	return fmt.Sprintf("%d per %s", r.Limit, r.Window)
}

var units = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRule parses "N per unit", "N/unit" or "N per M units".
func ParseRule(s string) (Rule, error) {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(s, "/", " per ")))
	if len(fields) < 3 || fields[1] != "per" {
		return Rule{}, fmt.Errorf("invalid rate limit %q", s)
	}
	limit, err := strconv.Atoi(fields[0])
	if err != nil || limit <= 0 {
		return Rule{}, fmt.Errorf("invalid rate limit count in %q", s)
	}

	multiplier := 1
	unitField := fields[2]
	if len(fields) == 4 {
		multiplier, err = strconv.Atoi(fields[2])
		if err != nil || multiplier <= 0 {
			return Rule{}, fmt.Errorf("invalid rate limit period in %q", s)
		}
		unitField = fields[3]
	} else if len(fields) > 4 {
		return Rule{}, fmt.Errorf("invalid rate limit %q", s)
	}
	unit, ok := units[strings.TrimSuffix(unitField, "s")]
	if !ok {
		return Rule{}, fmt.Errorf("unknown rate limit unit in %q", s)
	}
	return Rule{Limit: limit, Window: time.Duration(multiplier) * unit}, nil
}

// ParseRules parses every non-empty rule.
func ParseRules(list []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			continue
		}
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Limiter decides whether the request identified by key may proceed under rule.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (bool, error)
}

// Memory keeps a token bucket per key and rule in a bounded LRU.
type Memory struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
}

// NewMemory creates a Memory limiter tracking at most size buckets.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = 10_000
	}
	buckets, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	return &Memory{buckets: buckets}, nil
}

func (m *Memory) Allow(_ context.Context, key string, rule Rule) (bool, error) {
	bucketKey := rule.String() + "|" + key

	m.mu.Lock()
	limiter, ok := m.buckets.Get(bucketKey)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rule.Window/time.Duration(rule.Limit)), rule.Limit)
		m.buckets.Add(bucketKey, limiter)
	}
	m.mu.Unlock()

	return limiter.Allow(), nil
}

// Redis counts requests per fixed window, shared by every instance.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (r *Redis) Allow(ctx context.Context, key string, rule Rule) (bool, error) {
	k := windowKey(key, rule, r.now())
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, rule.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(rule.Limit), nil
}

func windowKey(key string, rule Rule, now time.Time) string {
	window := int64(rule.Window / time.Second)
	if window <= 0 {
		window = 1
	}
	slot := now.Unix() / window
	return rediskey.Key("ratelimit", strconv.FormatInt(window, 10), strconv.Itoa(rule.Limit), key, strconv.FormatInt(slot, 10))
}

// New returns a Redis limiter when client is set and a Memory limiter otherwise.
func New(client *redis.Client) (Limiter, error) {
	if client != nil {
		return NewRedis(client), nil
	}
	return NewMemory(0)
}
