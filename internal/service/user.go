package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msgboard/msgboard/internal/metrics"
	"github.com/msgboard/msgboard/internal/model"
	"github.com/msgboard/msgboard/internal/repository"
)

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	cache   EntityCache
	metrics metrics.Recorder
	logger  *slog.Logger

	cacheEnabled bool
	newID        func() string
}

// NewUserService creates a new UserService.
// A nil cache disables caching; a nil recorder discards metrics.
func NewUserService(store UserStore, cache EntityCache, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	cacheEnabled := cache != nil
	if !cacheEnabled {
		cache = noopCache{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		cache:   cache,
		metrics: recorder,
		logger:  logger,

		cacheEnabled: cacheEnabled,
		newID:        newID,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Name  string
	Email string
}

// CreateUser persists a new user with a generated ID.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	user := &model.User{
		ID:        s.newID(),
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()

	return user, nil
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// GetUser retrieves a user with its messages.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.UserWithMessages, error) {
	if s.cacheEnabled {
		if cached, err := s.cache.GetUser(ctx, id); err == nil {
			s.metrics.IncCacheHit(metrics.EntityUser)
			return cached, nil
		}
		s.metrics.IncCacheMiss(metrics.EntityUser)
	}

	gen, genErr := s.cache.UserGeneration(ctx, id)
	if genErr != nil {
		s.logger.Warn("cache_generation_failed", "entity", metrics.EntityUser, "id", id, "error", genErr)
	}

	user, err := s.store.GetUserWithMessages(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Messages == nil {
		user.Messages = []model.Message{}
	}

	if genErr == nil {
		if err := s.cache.SetUser(ctx, user, gen); err != nil {
			s.logger.Warn("cache_set_failed", "entity", metrics.EntityUser, "id", id, "error", err)
		}
	}

	return user, nil
}

// DeleteUser removes a user and, through the datastore cascade, its messages.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	messageIDs, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.cache.InvalidateUser(ctx, id); err != nil {
		s.logger.Warn("cache_invalidate_failed", "entity", metrics.EntityUser, "id", id, "error", err)
	}
	if err := s.cache.InvalidateMessages(ctx, messageIDs...); err != nil {
		s.logger.Warn("cache_invalidate_failed", "entity", metrics.EntityMessage, "count", len(messageIDs), "error", err)
	}

	s.metrics.IncUserDeleted()

	return nil
}
