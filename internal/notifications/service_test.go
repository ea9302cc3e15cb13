package notifications_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mkowalczyk/libreserve/internal/domain/notification"
	"github.com/mkowalczyk/libreserve/internal/notifications"
)

type fakeStore struct {
	inserted []notification.Notification
	insertFn func(ctx context.Context, n notification.Notification) error
}

func (f *fakeStore) Insert(ctx context.Context, n notification.Notification) error {
	if f.insertFn != nil {
		if err := f.insertFn(ctx, n); err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, n)
	return nil
}

type fakeAdmins struct {
	ids []string
	err error
}

func (f *fakeAdmins) ListAdminIDs(ctx context.Context) ([]string, error) {
	return f.ids, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyPersists(t *testing.T) {
	store := &fakeStore{}

	svc := notifications.NewService(store, &fakeAdmins{}, testLogger(), nil)

	svc.Notify(context.Background(), "user-1", "hello", notification.TypeReservationStatus)

	if len(store.inserted) != 1 {
		t.Fatalf("want 1 insert, got %d", len(store.inserted))
	}

	n := store.inserted[0]

	if n.UserID != "user-1" || n.Message != "hello" || n.Type != notification.TypeReservationStatus {
		t.Fatalf("unexpected notification: %+v", n)
	}

	if n.IsRead {
		t.Fatalf("new notifications start unread")
	}
}

// a storage failure must not reach the caller
func TestNotifySwallowsStoreError(t *testing.T) {
	store := &fakeStore{
		insertFn: func(ctx context.Context, n notification.Notification) error {
			return errors.New("connection reset")
		},
	}

	svc := notifications.NewService(store, &fakeAdmins{}, testLogger(), nil)

	svc.Notify(context.Background(), "user-1", "hello", notification.TypeNewUser)

	if len(store.inserted) != 0 {
		t.Fatalf("insert should have failed, got %d records", len(store.inserted))
	}
}

func TestNotifyAdminsSequential(t *testing.T) {
	admins := &fakeAdmins{ids: []string{"admin-1", "admin-2", "admin-3"}}
	store := &fakeStore{}

	svc := notifications.NewService(store, admins, testLogger(), nil)

	svc.NotifyAdmins(context.Background(), "broadcast", notification.TypeNewReservation)

	if len(store.inserted) != 3 {
		t.Fatalf("want 3 inserts, got %d", len(store.inserted))
	}

	// one record per admin, in listing order
	for i, id := range admins.ids {
		got := store.inserted[i]
		if got.UserID != id {
			t.Fatalf("insert %d went to %q, want %q", i, got.UserID, id)
		}
		if got.Message != "broadcast" || got.Type != notification.TypeNewReservation {
			t.Fatalf("unexpected notification: %+v", got)
		}
	}
}

// one admin's failed write must not stop the rest of the broadcast
func TestNotifyAdminsContinuesPastFailure(t *testing.T) {
	store := &fakeStore{
		insertFn: func(ctx context.Context, n notification.Notification) error {
			if n.UserID == "admin-2" {
				return errors.New("disk full")
			}
			return nil
		},
	}

	svc := notifications.NewService(store, &fakeAdmins{ids: []string{"admin-1", "admin-2", "admin-3"}}, testLogger(), nil)

	svc.NotifyAdmins(context.Background(), "broadcast", notification.TypeNewUser)

	if len(store.inserted) != 2 {
		t.Fatalf("want 2 successful inserts, got %d", len(store.inserted))
	}

	if store.inserted[0].UserID != "admin-1" || store.inserted[1].UserID != "admin-3" {
		t.Fatalf("wrong recipients: %+v", store.inserted)
	}
}

func TestNotifyAdminsListingFailureSwallowed(t *testing.T) {
	store := &fakeStore{}

	svc := notifications.NewService(store, &fakeAdmins{err: errors.New("timeout")}, testLogger(), nil)

	svc.NotifyAdmins(context.Background(), "broadcast", notification.TypeNewUser)

	if len(store.inserted) != 0 {
		t.Fatalf("no inserts expected, got %d", len(store.inserted))
	}
}
