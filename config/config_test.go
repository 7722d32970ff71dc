package config

import (
	"testing"
	"time"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore()

	if _, exists := s.Get("modem/mock/delay"); exists {
		t.Fatal("expected an empty store to report no value")
	}

	s.Set("modem/mock/delay", "0.5")
	value, exists := s.Get("modem/mock/delay")
	if !exists || value != "0.5" {
		t.Fatalf("expected %q; got %q (exists=%v)", "0.5", value, exists)
	}
}

func TestStoreSetDefault(t *testing.T) {
	s := NewStore()

	s.SetDefault("modem/mock/loss", "0.05")
	s.SetDefault("modem/mock/loss", "0.99")
	if value, _ := s.Get("modem/mock/loss"); value != "0.05" {
		t.Fatalf("expected the first default to win; got %q", value)
	}

	s.Set("modem/mock/loss", "0.25")
	s.SetDefault("modem/mock/loss", "0.05")
	if value, _ := s.Get("modem/mock/loss"); value != "0.25" {
		t.Fatalf("expected explicit sets to win over defaults; got %q", value)
	}
}

func TestStoreWatch(t *testing.T) {
	s := NewStore()
	s.Set("key", "initial")

	values, unsubscribe := s.Watch("key")
	defer unsubscribe()

	// Watchers of an existing key receive the current value immediately.
	select {
	case value := <-values:
		if value != "initial" {
			t.Fatalf("expected %q; got %q", "initial", value)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for the initial value")
	}

	s.Set("key", "updated")
	select {
	case value := <-values:
		if value != "updated" {
			t.Fatalf("expected %q; got %q", "updated", value)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for the updated value")
	}
}

func TestStoreWatchKeepsLatestValue(t *testing.T) {
	s := NewStore()
	values, unsubscribe := s.Watch("key")
	defer unsubscribe()

	// A slow consumer only observes the most recent value.
	s.Set("key", "1")
	s.Set("key", "2")
	s.Set("key", "3")

	select {
	case value := <-values:
		if value != "3" {
			t.Fatalf("expected the latest value %q; got %q", "3", value)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for a value")
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	s := NewStore()
	values, unsubscribe := s.Watch("key")

	unsubscribe()
	unsubscribe() // second call is a no-op

	if _, open := <-values; open {
		t.Fatal("expected the watch channel to be closed")
	}

	// Sets after unsubscribe must not panic.
	s.Set("key", "value")
}

func TestSeedFromEnv(t *testing.T) {
	s := NewStore()
	seedFromEnv(s, []string{
		"UWACOMM_MODEM_MOCK_DELAY=0.25",
		"UWACOMM_MODEM_MOCK_MAXFRAME=32",
		"PATH=/usr/bin",
		"UWACOMM_=ignored",
	})

	specs := []struct {
		path   string
		expVal string
		expSet bool
	}{
		{"modem/mock/delay", "0.25", true},
		{"modem/mock/maxframe", "32", true},
		{"path", "", false},
	}

	for specIndex, spec := range specs {
		value, exists := s.Get(spec.path)
		if exists != spec.expSet || value != spec.expVal {
			t.Errorf("[spec %d] expected (%q, %v); got (%q, %v)", specIndex, spec.expVal, spec.expSet, value, exists)
		}
	}
}
