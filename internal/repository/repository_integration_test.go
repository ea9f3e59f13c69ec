//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msgboard/msgboard/internal/model"
	"github.com/msgboard/msgboard/internal/testutil"
)

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	user := testutil.NewTestUser(t, "alice")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := repo.GetUserWithMessages(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserWithMessages failed: %v", err)
	}
	if got.Email != user.Email || got.Name != user.Name {
		t.Errorf("user mismatch: got %+v, want %+v", got.User, *user)
	}
	if !got.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, user.CreatedAt)
	}
	if got.Messages == nil || len(got.Messages) != 0 {
		t.Errorf("expected empty non-nil messages, got %#v", got.Messages)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	first := testutil.NewTestUser(t, "bob")
	second := testutil.NewTestUser(t, "bob2")
	second.Email = first.Email

	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}
	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	for _, id := range []string{"01HZX5J8Q4M0000000000000000", "not-an-id", "bad\x00byte"} {
		if _, err := repo.GetUserWithMessages(ctx, id); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetUserWithMessages(%q): expected ErrUserNotFound, got %v", id, err)
		}
		if _, err := repo.DeleteUser(ctx, id); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("DeleteUser(%q): expected ErrUserNotFound, got %v", id, err)
		}
		if _, err := repo.GetMessageByID(ctx, id); !errors.Is(err, ErrMessageNotFound) {
			t.Errorf("GetMessageByID(%q): expected ErrMessageNotFound, got %v", id, err)
		}
		if _, err := repo.DeleteMessage(ctx, id); !errors.Is(err, ErrMessageNotFound) {
			t.Errorf("DeleteMessage(%q): expected ErrMessageNotFound, got %v", id, err)
		}
	}
}

func TestIntegrationUserRepository_ListNewestFirst(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", users)
	}

	older := testutil.NewTestUser(t, "older")
	older.CreatedAt = older.CreatedAt.Add(-time.Minute)
	newer := testutil.NewTestUser(t, "newer")
	for _, u := range []*model.User{older, newer} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	users, err = repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 || users[0].ID != newer.ID || users[1].ID != older.ID {
		t.Errorf("unexpected order: %+v", users)
	}
}

func TestIntegrationMessageRepository_CreateWithOwner(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	user := testutil.NewTestUser(t, "carol")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	msg := testutil.NewTestMessage(t, user.ID, "hello")
	created, err := repo.CreateMessage(ctx, msg)
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	if created.User.ID != user.ID || created.User.Email != user.Email {
		t.Errorf("owner mismatch: %+v", created.User)
	}

	got, err := repo.GetMessageByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if got.Content != "hello" || got.UserID != user.ID {
		t.Errorf("message mismatch: %+v", got)
	}

	list, err := repo.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(list) != 1 || list[0].User.ID != user.ID {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestIntegrationMessageRepository_UnknownOwner(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	msg := testutil.NewTestMessage(t, "does-not-exist", "x")
	if _, err := repo.CreateMessage(ctx, msg); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestIntegrationMessageRepository_Delete(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	user := testutil.NewTestUser(t, "dave")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	msg := testutil.NewTestMessage(t, user.ID, "bye")
	if _, err := repo.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	owner, err := repo.DeleteMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	if owner != user.ID {
		t.Errorf("owner = %q, want %q", owner, user.ID)
	}

	if _, err := repo.DeleteMessage(ctx, msg.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound on second delete, got %v", err)
	}
}

func TestIntegrationUserRepository_DeleteCascades(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	user := testutil.NewTestUser(t, "erin")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	first := testutil.NewTestMessage(t, user.ID, "one")
	second := testutil.NewTestMessage(t, user.ID, "two")
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	for _, m := range []*model.Message{first, second} {
		if _, err := repo.CreateMessage(ctx, m); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	detail, err := repo.GetUserWithMessages(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserWithMessages failed: %v", err)
	}
	if len(detail.Messages) != 2 || detail.Messages[0].ID != second.ID {
		t.Errorf("expected newest message first, got %+v", detail.Messages)
	}

	removed, err := repo.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 cascaded message ids, got %v", removed)
	}

	for _, m := range []*model.Message{first, second} {
		if _, err := repo.GetMessageByID(ctx, m.ID); !errors.Is(err, ErrMessageNotFound) {
			t.Errorf("message %s survived its owner: %v", m.ID, err)
		}
	}
}

func newRepositoryTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL, PoolConfig{MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
