// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/msgboard/msgboard/internal/model"
)

// Service errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrMessageNotFound = errors.New("message not found")
	ErrOwnerNotFound   = errors.New("message owner not found")
)

// UserStore persists users. Implemented by *repository.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUserWithMessages(ctx context.Context, id string) (*model.UserWithMessages, error)
	DeleteUser(ctx context.Context, id string) ([]string, error)
}

// MessageStore persists messages. Implemented by *repository.Repository.
type MessageStore interface {
	CreateMessage(ctx context.Context, message *model.Message) (*model.MessageWithUser, error)
	ListMessages(ctx context.Context) ([]model.MessageWithUser, error)
	GetMessageByID(ctx context.Context, id string) (*model.MessageWithUser, error)
	DeleteMessage(ctx context.Context, id string) (string, error)
}

// EntityCache is a read-through copy of single-entity lookups.
// Implemented by *cache.Cache; misses are reported as an error.
//
// Each entity carries a generation that invalidation bumps. A fill passes
// the generation read before the datastore lookup and is dropped when an
// invalidation happened in between.
type EntityCache interface {
	GetUser(ctx context.Context, id string) (*model.UserWithMessages, error)
	UserGeneration(ctx context.Context, id string) (int64, error)
	SetUser(ctx context.Context, user *model.UserWithMessages, gen int64) error
	InvalidateUser(ctx context.Context, id string) error
	GetMessage(ctx context.Context, id string) (*model.MessageWithUser, error)
	MessageGeneration(ctx context.Context, id string) (int64, error)
	SetMessage(ctx context.Context, message *model.MessageWithUser, gen int64) error
	InvalidateMessages(ctx context.Context, ids ...string) error
}

var errNoCache = errors.New("cache disabled")

// noopCache always misses.
type noopCache struct{}

func (noopCache) GetUser(context.Context, string) (*model.UserWithMessages, error) {
	return nil, errNoCache
}

func (noopCache) UserGeneration(context.Context, string) (int64, error) {
	return 0, nil
}

func (noopCache) SetUser(context.Context, *model.UserWithMessages, int64) error {
	return nil
}

func (noopCache) InvalidateUser(context.Context, string) error {
	return nil
}

func (noopCache) GetMessage(context.Context, string) (*model.MessageWithUser, error) {
	return nil, errNoCache
}

func (noopCache) MessageGeneration(context.Context, string) (int64, error) {
	return 0, nil
}

func (noopCache) SetMessage(context.Context, *model.MessageWithUser, int64) error {
	return nil
}

func (noopCache) InvalidateMessages(context.Context, ...string) error {
	return nil
}

// newID returns a time-sortable, globally unique identifier.
func newID() string {
	return ulid.Make().String()
}

// now returns the creation timestamp at the precision PostgreSQL stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
