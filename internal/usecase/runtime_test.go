package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"webexbot/internal/domain"
)

// fakeMessenger records sent messages and serves canned message lookups.
type fakeMessenger struct {
	mu       sync.Mutex
	messages map[string]*domain.Message
	sent     []*domain.MessageOut
	getErr   error
	getCalls int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{messages: make(map[string]*domain.Message)}
}

func (f *fakeMessenger) SendMessage(_ context.Context, out *domain.MessageOut) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, out)
	return &domain.Message{ID: "sent", RoomID: out.RoomID, Text: out.Text}, nil
}

func (f *fakeMessenger) GetMessage(_ context.Context, id string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	msg, ok := f.messages[id]
	if !ok {
		return nil, domain.NewDomainError("fake.GetMessage", domain.ErrAPIStatus, id)
	}
	return msg, nil
}

func (f *fakeMessenger) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	texts := make([]string, len(f.sent))
	for i, out := range f.sent {
		texts[i] = out.Text
	}
	return texts
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoHandler(ctx context.Context, client domain.Messenger, msg domain.Message, required, _ []domain.ArgBinding) {
	client.SendMessage(ctx, msg.Reply("echo "+required[0].Value))
}

func TestHandleFrameDispatchesPostActivity(t *testing.T) {
	fake := newFakeMessenger()
	fake.messages["msg-1"] = &domain.Message{ID: "msg-1", RoomID: "room-1", Text: "@bot echo hello"}

	rt := NewRuntime(fake, testLogger())
	rt.AddCommand("echo", []domain.ArgumentSpec{domain.RequiredArg("word")}, domain.HandlerFunc(echoHandler))

	frame := `{"id":"evt-1","data":{"eventType":"conversation.activity","activity":{"id":"msg-1","verb":"post"}}}`
	rt.HandleFrame(context.Background(), frame)
	rt.Wait()

	texts := fake.sentTexts()
	if len(texts) != 1 || texts[0] != "echo hello" {
		t.Errorf("sent = %v, want [echo hello]", texts)
	}
}

func TestHandleFrameIgnoresOtherEventTypes(t *testing.T) {
	fake := newFakeMessenger()
	rt := NewRuntime(fake, testLogger())

	rt.HandleFrame(context.Background(), `{"data":{"eventType":"presence.changed"}}`)
	rt.Wait()

	if fake.getCalls != 0 {
		t.Errorf("GetMessage called %d times for a non-activity frame", fake.getCalls)
	}
}

func TestHandleFrameIgnoresCardActionVerb(t *testing.T) {
	fake := newFakeMessenger()
	rt := NewRuntime(fake, testLogger())

	frame := `{"data":{"eventType":"conversation.activity","activity":{"id":"act-1","verb":"cardAction"}}}`
	rt.HandleFrame(context.Background(), frame)
	rt.Wait()

	if fake.getCalls != 0 {
		t.Errorf("GetMessage called %d times for a card action", fake.getCalls)
	}
}

func TestHandleFrameSurvivesGarbage(t *testing.T) {
	fake := newFakeMessenger()
	rt := NewRuntime(fake, testLogger())

	for _, payload := range []string{"", "not json", "{}", `{"data":{}}`} {
		rt.HandleFrame(context.Background(), payload)
	}
	rt.Wait()

	if len(fake.sentTexts()) != 0 {
		t.Error("garbage frames should not produce replies")
	}
}

func TestHandleFrameDropsNonCommandChatter(t *testing.T) {
	fake := newFakeMessenger()
	fake.messages["msg-2"] = &domain.Message{ID: "msg-2", RoomID: "room-1", Text: "just people talking"}

	rt := NewRuntime(fake, testLogger())
	rt.AddCommand("echo", []domain.ArgumentSpec{domain.RequiredArg("word")}, domain.HandlerFunc(echoHandler))

	frame := `{"data":{"eventType":"conversation.activity","activity":{"id":"msg-2","verb":"post"}}}`
	rt.HandleFrame(context.Background(), frame)
	rt.Wait()

	if len(fake.sentTexts()) != 0 {
		t.Error("ordinary chatter should not produce replies")
	}
}

func TestHandleMessageEventFetchesAndDispatches(t *testing.T) {
	fake := newFakeMessenger()
	fake.messages["wh-1"] = &domain.Message{ID: "wh-1", RoomID: "room-9", Text: "@bot echo webhook"}

	rt := NewRuntime(fake, testLogger())
	rt.AddCommand("echo", []domain.ArgumentSpec{domain.RequiredArg("word")}, domain.HandlerFunc(echoHandler))

	rt.HandleMessageEvent(context.Background(), &domain.WebhookEvent{
		Resource: "messages",
		Event:    "created",
		Data:     domain.MessageEventData{ID: "wh-1", RoomID: "room-9"},
	})
	rt.Wait()

	texts := fake.sentTexts()
	if len(texts) != 1 || texts[0] != "echo webhook" {
		t.Errorf("sent = %v, want [echo webhook]", texts)
	}
}

func TestHandleMessageEventWithoutID(t *testing.T) {
	fake := newFakeMessenger()
	rt := NewRuntime(fake, testLogger())

	rt.HandleMessageEvent(context.Background(), &domain.WebhookEvent{})
	rt.Wait()

	if fake.getCalls != 0 {
		t.Error("event without a message id should not hit the API")
	}
}

func TestHandlerPanicDoesNotPropagate(t *testing.T) {
	fake := newFakeMessenger()
	fake.messages["msg-3"] = &domain.Message{ID: "msg-3", RoomID: "room-1", Text: "@bot boom"}

	rt := NewRuntime(fake, testLogger())
	rt.AddCommand("boom", nil, domain.HandlerFunc(
		func(context.Context, domain.Messenger, domain.Message, []domain.ArgBinding, []domain.ArgBinding) {
			panic("handler bug")
		}))

	frame := `{"data":{"eventType":"conversation.activity","activity":{"id":"msg-3","verb":"post"}}}`
	rt.HandleFrame(context.Background(), frame)
	rt.Wait() // must return instead of crashing the test binary
}
