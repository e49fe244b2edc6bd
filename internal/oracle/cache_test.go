package oracle

import (
	"context"
	"errors"
	"testing"
	"time"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func TestCachedOracleServesRepeatPrompts(t *testing.T) {
	next := NewScripted("first", "second")
	cached := NewCachedOracle(next, NewMemoryCache(), time.Minute, "ollama/mistral", quietLogger())

	for i := 0; i < 3; i++ {
		text, err := cached.Generate(context.Background(), "same prompt")
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if text != "first" {
			t.Errorf("call %d: expected cached text, got %q", i, text)
		}
	}
	if next.Calls() != 1 {
		t.Errorf("expected 1 upstream call, got %d", next.Calls())
	}

	text, _ := cached.Generate(context.Background(), "other prompt")
	if text != "second" {
		t.Errorf("expected a fresh response for a new prompt, got %q", text)
	}
}

func TestCachedOracleNamespacesKeys(t *testing.T) {
	a := NewCachedOracle(nil, nil, 0, "openai/gpt-4o", nil)
	b := NewCachedOracle(nil, nil, 0, "ollama/mistral", nil)
	if a.key("p") == b.key("p") {
		t.Error("expected different keys for different namespaces")
	}
	if a.key("p") != a.key("p") {
		t.Error("expected stable keys")
	}
}

func TestCachedOracleSkipsEmptyAndErrors(t *testing.T) {
	next := NewScripted("", "filled")
	cached := NewCachedOracle(next, NewMemoryCache(), time.Minute, "ns", quietLogger())

	if text, _ := cached.Generate(context.Background(), "p"); text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
	if text, _ := cached.Generate(context.Background(), "p"); text != "filled" {
		t.Errorf("empty responses must not be cached, got %q", text)
	}

	failing := NewCachedOracle(NewFailing(ErrUnavailable), NewMemoryCache(), time.Minute, "ns", quietLogger())
	if _, err := failing.Generate(context.Background(), "p"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestCachedOracleToleratesBrokenCache(t *testing.T) {
	next := NewScripted("live")
	cached := NewCachedOracle(next, brokenCache{}, time.Minute, "ns", quietLogger())

	text, err := cached.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("cache failures must not surface: %v", err)
	}
	if text != "live" {
		t.Errorf("expected live text, got %q", text)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 4, 13, 22, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_ = cache.Set(context.Background(), "k", "v", time.Minute)
	if v, ok, _ := cache.Get(context.Background(), "k"); !ok || v != "v" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(context.Background(), "k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestScriptedRepeatsLastResponse(t *testing.T) {
	s := NewScripted("a", "b")
	got := []string{}
	for i := 0; i < 4; i++ {
		text, _ := s.Generate(context.Background(), "p")
		got = append(got, text)
	}
	want := []string{"a", "b", "b", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
	if len(s.Prompts()) != 4 {
		t.Errorf("expected 4 recorded prompts, got %d", len(s.Prompts()))
	}
}
