package ws

import (
	"errors"
	"testing"
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/service"
)

type mockStore struct {
	participantIDs []uint
	messages       []*models.Message
	markedRead     []uint
	createErr      error
	markReadErr    error
	nextID         uint
}

func (m *mockStore) CreateMessage(conversationID uint, content string, senderID *uint) (*models.Message, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	message := &models.Message{
		ID:             m.nextID,
		Content:        content,
		SenderID:       senderID,
		ConversationID: conversationID,
		CreatedAt:      time.Now().UTC(),
	}
	m.messages = append(m.messages, message)
	return message, nil
}

func (m *mockStore) MarkRead(conversationID, userID uint) error {
	if m.markReadErr != nil {
		return m.markReadErr
	}
	m.markedRead = append(m.markedRead, userID)
	return nil
}

func (m *mockStore) ParticipantIDs(conversationID uint) ([]uint, error) {
	return m.participantIDs, nil
}

type mockPresence struct {
	calls []TypingEvent
	err   error
}

func (m *mockPresence) SetTyping(userID, conversationID uint, isTyping bool) error {
	m.calls = append(m.calls, TypingEvent{IsTyping: isTyping})
	return m.err
}

type mockDirectory struct {
	users map[uint]*models.User
}

func (m *mockDirectory) Get(userID uint) (*models.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type notification struct {
	recipient      string
	senderName     string
	conversationID uint
}

type mockNotifier struct {
	sent []notification
}

func (m *mockNotifier) NotifyNewMessage(recipient, senderName string, conversationID uint) {
	m.sent = append(m.sent, notification{recipient, senderName, conversationID})
}

type mockInvalidator struct {
	invalidated []uint
}

func (m *mockInvalidator) Invalidate(userID uint) error {
	m.invalidated = append(m.invalidated, userID)
	return nil
}

type routerFixture struct {
	hub         *Hub
	store       *mockStore
	presence    *mockPresence
	notifier    *mockNotifier
	invalidator *mockInvalidator
	router      *Router
	alice       *Client
	bob         *Client
}

// newRouterFixture wires a conversation with alice (user 1) and bob (user 2)
// both connected and subscribed.
func newRouterFixture() *routerFixture {
	hub := NewHub()
	store := &mockStore{participantIDs: []uint{1, 2}}
	presence := &mockPresence{}
	notifier := &mockNotifier{}
	invalidator := &mockInvalidator{}
	directory := &mockDirectory{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice", Email: "alice@example.com", FullName: "Alice Green"},
		2: {ID: 2, Username: "bob", Email: "bob@example.com"},
	}}

	alice := newTestClient(1, "conn-alice", 10)
	bob := newTestClient(2, "conn-bob", 10)
	for _, c := range []*Client{alice, bob} {
		hub.Register(c)
		hub.Subscribe(10, c.UserID)
	}

	return &routerFixture{
		hub:         hub,
		store:       store,
		presence:    presence,
		notifier:    notifier,
		invalidator: invalidator,
		router:      NewRouter(hub, store, presence, directory, notifier, invalidator),
		alice:       alice,
		bob:         bob,
	}
}

func TestHandleMessage(t *testing.T) {
	f := newRouterFixture()

	err := f.router.HandleEvent(f.alice, MessageEvent{Content: "the fern needs water"})
	if err != nil {
		t.Fatal(err)
	}

	if len(f.store.messages) != 1 {
		t.Fatalf("persisted messages = %d, want 1", len(f.store.messages))
	}
	stored := f.store.messages[0]
	if stored.SenderID == nil || *stored.SenderID != 1 {
		t.Errorf("sender = %v, want 1", stored.SenderID)
	}

	// The sender gets the echo too.
	if frames := drainFrames(f.alice); len(frames) != 1 {
		t.Errorf("sender got %d frames, want echo", len(frames))
	}
	if frames := drainFrames(f.bob); len(frames) != 1 {
		t.Errorf("recipient got %d frames, want 1", len(frames))
	}

	// One email per non-sender participant, named after the sender.
	if len(f.notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.sent))
	}
	sent := f.notifier.sent[0]
	if sent.recipient != "bob@example.com" || sent.senderName != "Alice Green" || sent.conversationID != 10 {
		t.Errorf("notification = %+v", sent)
	}

	// Unread caches drop for recipients only.
	if len(f.invalidator.invalidated) != 1 || f.invalidator.invalidated[0] != 2 {
		t.Errorf("invalidated = %v, want [2]", f.invalidator.invalidated)
	}
}

func TestHandleMessagePersistFailure(t *testing.T) {
	f := newRouterFixture()
	f.store.createErr = service.ErrContentTooLong

	err := f.router.HandleEvent(f.alice, MessageEvent{Content: "way too long"})
	if !errors.Is(err, service.ErrContentTooLong) {
		t.Fatalf("error = %v, want ErrContentTooLong", err)
	}

	// No partial broadcast and no notification on failure.
	if frames := drainFrames(f.alice); len(frames) != 0 {
		t.Errorf("sender got %d frames after failure", len(frames))
	}
	if frames := drainFrames(f.bob); len(frames) != 0 {
		t.Errorf("recipient got %d frames after failure", len(frames))
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("notifications = %d after failure", len(f.notifier.sent))
	}
}

func TestHandleTyping(t *testing.T) {
	f := newRouterFixture()

	if err := f.router.HandleEvent(f.alice, TypingEvent{IsTyping: true}); err != nil {
		t.Fatal(err)
	}

	if len(f.presence.calls) != 1 || !f.presence.calls[0].IsTyping {
		t.Errorf("presence calls = %+v", f.presence.calls)
	}
	// The actor never sees their own typing echo.
	if frames := drainFrames(f.alice); len(frames) != 0 {
		t.Errorf("actor got %d typing frames", len(frames))
	}
	if frames := drainFrames(f.bob); len(frames) != 1 {
		t.Errorf("peer got %d typing frames, want 1", len(frames))
	}
}

func TestHandleTypingPersistFailureStillBroadcasts(t *testing.T) {
	f := newRouterFixture()
	f.presence.err = errors.New("db down")

	if err := f.router.HandleEvent(f.alice, TypingEvent{IsTyping: true}); err != nil {
		t.Fatalf("typing persistence failure surfaced: %v", err)
	}
	if frames := drainFrames(f.bob); len(frames) != 1 {
		t.Errorf("peer got %d frames, want 1", len(frames))
	}
}

func TestHandleRead(t *testing.T) {
	f := newRouterFixture()

	if err := f.router.HandleEvent(f.bob, ReadEvent{}); err != nil {
		t.Fatal(err)
	}

	if len(f.store.markedRead) != 1 || f.store.markedRead[0] != 2 {
		t.Errorf("marked read = %v, want [2]", f.store.markedRead)
	}
	if frames := drainFrames(f.bob); len(frames) != 0 {
		t.Errorf("reader got %d frames", len(frames))
	}
	if frames := drainFrames(f.alice); len(frames) != 1 {
		t.Errorf("peer got %d frames, want 1", len(frames))
	}
	if len(f.invalidator.invalidated) != 1 || f.invalidator.invalidated[0] != 2 {
		t.Errorf("invalidated = %v, want [2]", f.invalidator.invalidated)
	}
}

func TestHandleReadFailure(t *testing.T) {
	f := newRouterFixture()
	f.store.markReadErr = service.ErrNotParticipant

	err := f.router.HandleEvent(f.bob, ReadEvent{})
	if !errors.Is(err, service.ErrNotParticipant) {
		t.Fatalf("error = %v, want ErrNotParticipant", err)
	}
	if frames := drainFrames(f.alice); len(frames) != 0 {
		t.Errorf("peer got %d frames after failure", len(frames))
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{service.ErrEmptyContent, "empty_content"},
		{service.ErrContentTooLong, "content_too_long"},
		{service.ErrConversationNotFound, "conversation_not_found"},
		{service.ErrNotParticipant, "not_participant"},
		{errors.New("boom"), "processing_failed"},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestNotifierFallbackSenderName(t *testing.T) {
	f := newRouterFixture()
	directory := &mockDirectory{users: map[uint]*models.User{
		2: {ID: 2, Username: "bob", Email: "bob@example.com"},
	}}
	f.router = NewRouter(f.hub, f.store, f.presence, directory, f.notifier, f.invalidator)

	if err := f.router.HandleEvent(f.alice, MessageEvent{Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].senderName != "Someone" {
		t.Errorf("notifications = %+v, want fallback sender name", f.notifier.sent)
	}
}
