package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnv_LoadsExistingFiles(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "LUMEN_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("LUMEN_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("LUMEN_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestConfiguration_Defaults(t *testing.T) {
	c := &Configuration{}
	if err := c.load(nil); err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.EventStore.QueueSize != 1000 {
		t.Errorf("expected default event store queue size 1000, got %d", c.EventStore.QueueSize)
	}
	if !c.EventStore.NotifyAll || c.EventStore.NotifyEach {
		t.Errorf("expected notifyAll default, got each=%v all=%v", c.EventStore.NotifyEach, c.EventStore.NotifyAll)
	}
	if c.Mentions.PoolSize != 4 {
		t.Errorf("expected default mentions pool size 4, got %d", c.Mentions.PoolSize)
	}
	if c.Mentions.PollTimeout != 10*time.Second {
		t.Errorf("expected default poll timeout 10s, got %s", c.Mentions.PollTimeout)
	}
}

func TestConfiguration_EnvOverrides(t *testing.T) {
	t.Setenv("MENTIONS_POOL_SIZE", "8")
	t.Setenv("EVENT_STORE_QUEUE_SIZE", "5")
	t.Setenv("EVENT_STORE_NOTIFY_EACH", "true")

	c := &Configuration{}
	if err := c.load(nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Mentions.PoolSize != 8 {
		t.Errorf("expected pool size 8, got %d", c.Mentions.PoolSize)
	}
	if c.EventStore.QueueSize != 5 {
		t.Errorf("expected queue size 5, got %d", c.EventStore.QueueSize)
	}
	if !c.EventStore.NotifyEach {
		t.Error("expected notifyEach override")
	}
}

func TestMentionsOptions_Validate(t *testing.T) {
	opts := MentionsOptions{PoolSize: 4, QueueSize: 10, PollTimeout: time.Second, Queue: "redis"}
	if err := opts.Validate(); err == nil {
		t.Error("expected error for redis queue without URL")
	}
	opts.RedisURL = "localhost:6379"
	if err := opts.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
