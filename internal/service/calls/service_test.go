package calls

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/store"
	"github.com/vishnuvardhan833199/chattify/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := zerolog.Nop()
	return New(st, &logger), st
}

func seedUser(t *testing.T, st *sqlite.SQLiteStore, email string) *store.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), email, "hash", "Test User")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestStartValidation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice@example.com")
	bob := seedUser(t, st, "bob@example.com")

	if _, err := svc.Start(ctx, alice.ID, alice.ID, store.MediaTypeAudio); !errors.Is(err, ErrCannotCallSelf) {
		t.Fatalf("self call: got %v", err)
	}
	if _, err := svc.Start(ctx, alice.ID, bob.ID, "screenshare"); !errors.Is(err, ErrInvalidMediaType) {
		t.Fatalf("bad media type: got %v", err)
	}
	if _, err := svc.Start(ctx, alice.ID, 999, store.MediaTypeAudio); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown callee: got %v", err)
	}

	call, err := svc.Start(ctx, alice.ID, bob.ID, store.MediaTypeVideo)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if call.ID == "" || call.Status != store.CallStatusOngoing || call.StartedAt.IsZero() {
		t.Fatalf("unexpected call record: %+v", call)
	}
}

func TestFinishStatusHandling(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice@example.com")
	bob := seedUser(t, st, "bob@example.com")
	carol := seedUser(t, st, "carol@example.com")

	call, err := svc.Start(ctx, alice.ID, bob.ID, store.MediaTypeAudio)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.Finish(ctx, "missing", alice.ID, store.CallStatusEnded); !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("unknown call: got %v", err)
	}
	if _, err := svc.Finish(ctx, call.ID, carol.ID, store.CallStatusEnded); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider: got %v", err)
	}
	if _, err := svc.Finish(ctx, call.ID, alice.ID, "exploded"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status: got %v", err)
	}

	// Empty status defaults to ended; the callee may finish too.
	finished, err := svc.Finish(ctx, call.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.Status != store.CallStatusEnded || finished.EndedAt == nil || finished.DurationMs < 0 {
		t.Fatalf("unexpected finished call: %+v", finished)
	}
}

func TestFinishRejected(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice@example.com")
	bob := seedUser(t, st, "bob@example.com")

	call, err := svc.Start(ctx, alice.ID, bob.ID, store.MediaTypeVideo)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	finished, err := svc.Finish(ctx, call.ID, bob.ID, store.CallStatusRejected)
	if err != nil {
		t.Fatalf("finish rejected: %v", err)
	}
	if finished.Status != store.CallStatusRejected {
		t.Fatalf("unexpected status: %+v", finished)
	}
}

func TestHistoryBothDirections(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice@example.com")
	bob := seedUser(t, st, "bob@example.com")
	carol := seedUser(t, st, "carol@example.com")

	if _, err := svc.Start(ctx, alice.ID, bob.ID, store.MediaTypeAudio); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Start(ctx, bob.ID, alice.ID, store.MediaTypeVideo); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Start(ctx, bob.ID, carol.ID, store.MediaTypeAudio); err != nil {
		t.Fatalf("start: %v", err)
	}

	history, err := svc.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 calls for alice, got %d", len(history))
	}
	for _, call := range history {
		if call.CallerID != alice.ID && call.CalleeID != alice.ID {
			t.Fatalf("foreign call in history: %+v", call)
		}
	}
}
