package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/vishnuvardhan833199/chattify/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedUser(t *testing.T, st *SQLiteStore, email, name string) *store.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), email, "hash", name)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, st, "alice@example.com", "Alice")
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Fatalf("user missing generated fields: %+v", u)
	}

	byID, err := st.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Email != "alice@example.com" || byID.FullName != "Alice" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	byEmail, err := st.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("lookup mismatch: %+v", byEmail)
	}

	if _, err := st.GetUserByID(ctx, 999); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	st := newTestStore(t)

	seedUser(t, st, "alice@example.com", "Alice")
	if _, err := st.CreateUser(context.Background(), "alice@example.com", "hash", "Alice Two"); err == nil {
		t.Fatalf("unique constraint must reject duplicate email")
	}
}

func TestListUsersExcept(t *testing.T) {
	st := newTestStore(t)

	alice := seedUser(t, st, "alice@example.com", "Alice")
	seedUser(t, st, "carol@example.com", "Carol")
	seedUser(t, st, "bob@example.com", "Bob")

	users, err := st.ListUsersExcept(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	// Ordered by full name.
	if users[0].FullName != "Bob" || users[1].FullName != "Carol" {
		t.Fatalf("unexpected order: %+v", users)
	}
}

func TestUpdateAvatar(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, st, "alice@example.com", "Alice")
	if err := st.UpdateAvatar(ctx, u.ID, "/uploads/a.png"); err != nil {
		t.Fatalf("update avatar: %v", err)
	}

	got, err := st.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.AvatarURL != "/uploads/a.png" {
		t.Fatalf("avatar not updated: %q", got.AvatarURL)
	}

	if err := st.UpdateAvatar(ctx, 999, "/uploads/b.png"); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestMessagesConversation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice@example.com", "Alice")
	bob := seedUser(t, st, "bob@example.com", "Bob")
	carol := seedUser(t, st, "carol@example.com", "Carol")

	m1, err := st.CreateMessage(ctx, &store.Message{SenderID: alice.ID, ReceiverID: bob.ID, Text: "hi"})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if m1.ID == 0 || m1.CreatedAt.IsZero() {
		t.Fatalf("message missing generated fields: %+v", m1)
	}

	if _, err := st.CreateMessage(ctx, &store.Message{SenderID: bob.ID, ReceiverID: alice.ID, Text: "hello"}); err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if _, err := st.CreateMessage(ctx, &store.Message{SenderID: alice.ID, ReceiverID: carol.ID, Text: "other thread"}); err != nil {
		t.Fatalf("create unrelated: %v", err)
	}

	msgs, err := st.ListConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "hi" || msgs[1].Text != "hello" {
		t.Fatalf("unexpected order: %+v", msgs)
	}

	// Symmetric regardless of argument order.
	flipped, err := st.ListConversation(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("list flipped: %v", err)
	}
	if len(flipped) != 2 || flipped[0].ID != msgs[0].ID {
		t.Fatalf("conversation not symmetric: %+v", flipped)
	}

	empty, err := st.ListConversation(ctx, bob.ID, carol.ID)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty conversation, got %+v", empty)
	}
}

func TestCallLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice@example.com", "Alice")
	bob := seedUser(t, st, "bob@example.com", "Bob")

	started := time.Now().UTC().Truncate(time.Second)
	call := &store.Call{
		ID:        "call-1",
		CallerID:  alice.ID,
		CalleeID:  bob.ID,
		MediaType: store.MediaTypeVideo,
		Status:    store.CallStatusOngoing,
		StartedAt: started,
	}
	if err := st.CreateCall(ctx, call); err != nil {
		t.Fatalf("create call: %v", err)
	}

	got, err := st.GetCall(ctx, "call-1")
	if err != nil {
		t.Fatalf("get call: %v", err)
	}
	if got.Status != store.CallStatusOngoing || got.EndedAt != nil {
		t.Fatalf("unexpected open call: %+v", got)
	}

	ended := started.Add(90 * time.Second)
	if err := st.FinishCall(ctx, "call-1", store.CallStatusEnded, ended, 90000); err != nil {
		t.Fatalf("finish call: %v", err)
	}

	got, err = st.GetCall(ctx, "call-1")
	if err != nil {
		t.Fatalf("get finished call: %v", err)
	}
	if got.Status != store.CallStatusEnded || got.EndedAt == nil || got.DurationMs != 90000 {
		t.Fatalf("unexpected finished call: %+v", got)
	}

	if err := st.FinishCall(ctx, "missing", store.CallStatusEnded, ended, 0); err == nil {
		t.Fatalf("expected error for unknown call")
	}
	if _, err := st.GetCall(ctx, "missing"); err == nil {
		t.Fatalf("expected error for unknown call")
	}
}

func TestListCallsForUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice@example.com", "Alice")
	bob := seedUser(t, st, "bob@example.com", "Bob")
	carol := seedUser(t, st, "carol@example.com", "Carol")

	base := time.Now().UTC().Add(-time.Hour)
	seed := []store.Call{
		{ID: "c1", CallerID: alice.ID, CalleeID: bob.ID, MediaType: store.MediaTypeAudio, Status: store.CallStatusEnded, StartedAt: base},
		{ID: "c2", CallerID: bob.ID, CalleeID: alice.ID, MediaType: store.MediaTypeVideo, Status: store.CallStatusMissed, StartedAt: base.Add(10 * time.Minute)},
		{ID: "c3", CallerID: bob.ID, CalleeID: carol.ID, MediaType: store.MediaTypeAudio, Status: store.CallStatusEnded, StartedAt: base.Add(20 * time.Minute)},
	}
	for i := range seed {
		if err := st.CreateCall(ctx, &seed[i]); err != nil {
			t.Fatalf("seed call %s: %v", seed[i].ID, err)
		}
	}

	calls, err := st.ListCallsForUser(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("list calls: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	// Newest first, both directions included.
	if calls[0].ID != "c2" || calls[1].ID != "c1" {
		t.Fatalf("unexpected order: %+v", calls)
	}

	limited, err := st.ListCallsForUser(ctx, alice.ID, 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "c2" {
		t.Fatalf("limit not applied: %+v", limited)
	}
}
