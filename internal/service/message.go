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

// MessageService handles message business logic.
type MessageService struct {
	store   MessageStore
	cache   EntityCache
	metrics metrics.Recorder
	logger  *slog.Logger

	cacheEnabled bool
	newID        func() string
}

// NewMessageService creates a new MessageService.
// A nil cache disables caching; a nil recorder discards metrics.
func NewMessageService(store MessageStore, cache EntityCache, recorder metrics.Recorder, logger *slog.Logger) *MessageService {
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
	return &MessageService{
		store:   store,
		cache:   cache,
		metrics: recorder,
		logger:  logger,

		cacheEnabled: cacheEnabled,
		newID:        newID,
	}
}

// CreateMessageInput defines input for creating a message.
type CreateMessageInput struct {
	Content string
	UserID  string
}

// CreateMessage persists a new message for an existing user.
func (s *MessageService) CreateMessage(ctx context.Context, input CreateMessageInput) (*model.MessageWithUser, error) {
	message := &model.Message{
		ID:        s.newID(),
		Content:   input.Content,
		UserID:    input.UserID,
		CreatedAt: now(),
	}

	created, err := s.store.CreateMessage(ctx, message)
	if err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	// The owner's cached message list is now stale.
	if err := s.cache.InvalidateUser(ctx, created.UserID); err != nil {
		s.logger.Warn("cache_invalidate_failed", "entity", metrics.EntityUser, "id", created.UserID, "error", err)
	}

	s.metrics.IncMessageCreated()

	return created, nil
}

// ListMessages returns all messages with their authors, newest first.
func (s *MessageService) ListMessages(ctx context.Context) ([]model.MessageWithUser, error) {
	messages, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.MessageWithUser{}
	}
	return messages, nil
}

// GetMessage retrieves a message with its author.
func (s *MessageService) GetMessage(ctx context.Context, id string) (*model.MessageWithUser, error) {
	if s.cacheEnabled {
		if cached, err := s.cache.GetMessage(ctx, id); err == nil {
			s.metrics.IncCacheHit(metrics.EntityMessage)
			return cached, nil
		}
		s.metrics.IncCacheMiss(metrics.EntityMessage)
	}

	gen, genErr := s.cache.MessageGeneration(ctx, id)
	if genErr != nil {
		s.logger.Warn("cache_generation_failed", "entity", metrics.EntityMessage, "id", id, "error", genErr)
	}

	message, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.SetMessage(ctx, message, gen); err != nil {
			s.logger.Warn("cache_set_failed", "entity", metrics.EntityMessage, "id", id, "error", err)
		}
	}

	return message, nil
}

// DeleteMessage removes a message.
func (s *MessageService) DeleteMessage(ctx context.Context, id string) error {
	userID, err := s.store.DeleteMessage(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if err := s.cache.InvalidateMessages(ctx, id); err != nil {
		s.logger.Warn("cache_invalidate_failed", "entity", metrics.EntityMessage, "id", id, "error", err)
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("cache_invalidate_failed", "entity", metrics.EntityUser, "id", userID, "error", err)
	}

	s.metrics.IncMessageDeleted()

	return nil
}
