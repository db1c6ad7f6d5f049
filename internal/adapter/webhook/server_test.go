package webhook

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"webexbot/internal/domain"
	"webexbot/internal/infra/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type eventSink struct {
	mu     sync.Mutex
	events []*domain.WebhookEvent
}

func (s *eventSink) handle(_ context.Context, event *domain.WebhookEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *eventSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func startTestServer(t *testing.T, sink *eventSink) *Server {
	t.Helper()
	srv := NewServer(config.WebhookConfig{
		Addr:           "127.0.0.1:0",
		Path:           "/webhook",
		RequestsPerMin: 600,
		BurstSize:      100,
	}, testLogger(), sink.handle)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop(context.Background()) })
	return srv
}

func TestRootLiveness(t *testing.T) {
	srv := startTestServer(t, &eventSink{})

	resp, err := http.Get("http://" + srv.BoundAddr() + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "WebexBot Server" {
		t.Errorf("body = %q", body)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestWebhookDelivery(t *testing.T) {
	sink := &eventSink{}
	srv := startTestServer(t, sink)

	payload := `{"id":"wh-1","resource":"messages","event":"created","data":{"id":"msg-1","roomId":"room-1"}}`
	resp, err := http.Post("http://"+srv.BoundAddr()+"/webhook", "application/json",
		bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", resp.StatusCode)
	}
	if sink.count() != 1 {
		t.Fatalf("handler saw %d events, want 1", sink.count())
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.events[0].Data.ID != "msg-1" {
		t.Errorf("event message id = %q", sink.events[0].Data.ID)
	}
}

func TestWebhookRejectsBadJSON(t *testing.T) {
	sink := &eventSink{}
	srv := startTestServer(t, sink)

	resp, err := http.Post("http://"+srv.BoundAddr()+"/webhook", "application/json",
		bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if sink.count() != 0 {
		t.Error("handler must not see undecodable deliveries")
	}
}

func TestWebhookRejectsNonPost(t *testing.T) {
	srv := startTestServer(t, &eventSink{})

	resp, err := http.Get("http://" + srv.BoundAddr() + "/webhook")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv := startTestServer(t, &eventSink{})

	resp, err := http.Get("http://" + srv.BoundAddr() + "/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
