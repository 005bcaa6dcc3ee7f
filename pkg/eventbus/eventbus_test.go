package eventbus

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lumenwiki/platform/pkg/logging"
)

func TestPublisher_PublishWithoutSubscribersLogs(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.WarnLevel)
	publisher := NewEventPublisher(log)

	publisher.Subscribe("other.topic", func(ctx context.Context, payload any) {
		t.Error("should not be called")
	})
	publisher.Publish(context.Background(), "test.topic", "payload")

	if output := logBuffer.String(); output == "" {
		t.Error("should have logged")
	} else if !strings.Contains(output, "eventbus.Publish: no matching subscribers") {
		t.Errorf("should have contained no matching subscribers but got: %q", output)
	}
}

func TestPublisher_Subscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	called := false
	var data any
	publisher.Subscribe("test.topic", func(ctx context.Context, payload any) {
		called = true
		data = payload
	})
	publisher.Publish(context.Background(), "test.topic", "test")
	if !called {
		t.Error("should be called")
	}
	if data != "test" {
		t.Errorf("expected: %v, got: %v", "test", data)
	}
}

func TestPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher(nil)
	unsubscribe := publisher.Subscribe("test.topic", func(ctx context.Context, payload any) {
		t.Error("should not be called after unsubscribe")
	})
	if got := publisher.SubscribersCount("test.topic"); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}
	unsubscribe()
	if got := publisher.SubscribersCount("test.topic"); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
	publisher.Publish(context.Background(), "test.topic", "payload")
}

func TestPublisher_PanicRecovery(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	publisher := NewEventPublisher(log)

	publisher.Subscribe("test.topic", func(ctx context.Context, payload any) {
		panic("handler exploded")
	})
	called := false
	publisher.Subscribe("test.topic", func(ctx context.Context, payload any) {
		called = true
	})

	publisher.Publish(context.Background(), "test.topic", "payload")

	if !called {
		t.Error("second handler should still run after the first panicked")
	}
	if !strings.Contains(logBuffer.String(), "panicked") {
		t.Errorf("expected panic log, got: %q", logBuffer.String())
	}
}

func TestPublisher_PublishE(t *testing.T) {
	publisher := NewEventPublisher(nil)

	if err := publisher.PublishE(context.Background(), "test.topic", nil); !errors.Is(err, ErrNoSubscribers) {
		t.Fatalf("expected ErrNoSubscribers, got %v", err)
	}

	boom := errors.New("boom")
	publisher.SubscribeE("test.topic", func(ctx context.Context, payload any) error {
		return boom
	})
	publisher.SubscribeE("test.topic", func(ctx context.Context, payload any) error {
		return nil
	})

	if err := publisher.PublishE(context.Background(), "test.topic", nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestPublisher_ContextReachesHandlers(t *testing.T) {
	publisher := NewEventPublisher(nil)
	type ctxKey string
	var got any
	publisher.Subscribe("test.topic", func(ctx context.Context, payload any) {
		got = ctx.Value(ctxKey("k"))
	})
	publisher.Publish(context.WithValue(context.Background(), ctxKey("k"), "v"), "test.topic", nil)
	if got != "v" {
		t.Errorf("expected context value to reach handler, got %v", got)
	}
}
