// Package memstore provides in-memory stand-ins for the PostgreSQL repository
// and the Redis entity cache. They enforce the same constraints the schema
// does (unique email, message owner must exist, cascading user delete) and
// return the repository's sentinel errors.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/msgboard/msgboard/internal/model"
	"github.com/msgboard/msgboard/internal/repository"
)

// Store is a thread-safe in-memory users/messages store.
type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User
	messages map[string]model.Message

	// Err, when set, is returned by every operation.
	Err error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]model.User),
		messages: make(map[string]model.Message),
	}
}

// CreateUser inserts a user, enforcing email uniqueness.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

// ListUsers returns users newest first.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID > users[j].ID
	})
	return users, nil
}

// GetUserWithMessages returns a user and its messages newest first.
func (s *Store) GetUserWithMessages(ctx context.Context, id string) (*model.UserWithMessages, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	messages := make([]model.Message, 0)
	for _, m := range s.messages {
		if m.UserID == id {
			messages = append(messages, m)
		}
	}
	sortMessages(messages)

	return &model.UserWithMessages{User: user, Messages: messages}, nil
}

// DeleteUser removes a user and cascades to its messages.
func (s *Store) DeleteUser(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	if _, ok := s.users[id]; !ok {
		return nil, repository.ErrUserNotFound
	}

	var removed []string
	for mid, m := range s.messages {
		if m.UserID == id {
			removed = append(removed, mid)
			delete(s.messages, mid)
		}
	}
	delete(s.users, id)
	sort.Strings(removed)
	return removed, nil
}

// CreateMessage inserts a message, enforcing that its owner exists.
func (s *Store) CreateMessage(ctx context.Context, message *model.Message) (*model.MessageWithUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	owner, ok := s.users[message.UserID]
	if !ok {
		return nil, repository.ErrOwnerNotFound
	}
	s.messages[message.ID] = *message
	return &model.MessageWithUser{Message: *message, User: owner}, nil
}

// ListMessages returns messages with authors newest first.
func (s *Store) ListMessages(ctx context.Context) ([]model.MessageWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	messages := make([]model.Message, 0, len(s.messages))
	for _, m := range s.messages {
		messages = append(messages, m)
	}
	sortMessages(messages)

	out := make([]model.MessageWithUser, len(messages))
	for i, m := range messages {
		out[i] = model.MessageWithUser{Message: m, User: s.users[m.UserID]}
	}
	return out, nil
}

// GetMessageByID returns a message with its author.
func (s *Store) GetMessageByID(ctx context.Context, id string) (*model.MessageWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	return &model.MessageWithUser{Message: m, User: s.users[m.UserID]}, nil
}

// DeleteMessage removes a message and returns its owner's ID.
func (s *Store) DeleteMessage(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}

	m, ok := s.messages[id]
	if !ok {
		return "", repository.ErrMessageNotFound
	}
	delete(s.messages, id)
	return m.UserID, nil
}

func sortMessages(messages []model.Message) {
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		}
		return messages[i].ID > messages[j].ID
	})
}

// ErrMiss is returned by Cache lookups that find nothing.
var ErrMiss = errors.New("memstore: cache miss")

// Cache is an in-memory entity cache. Like the Redis cache, fills carrying
// a generation older than the entity's current one are dropped.
type Cache struct {
	mu          sync.Mutex
	users       map[string]model.UserWithMessages
	messages    map[string]model.MessageWithUser
	userGens    map[string]int64
	messageGens map[string]int64
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		users:       make(map[string]model.UserWithMessages),
		messages:    make(map[string]model.MessageWithUser),
		userGens:    make(map[string]int64),
		messageGens: make(map[string]int64),
	}
}

// GetUser returns a cached user.
func (c *Cache) GetUser(ctx context.Context, id string) (*model.UserWithMessages, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return nil, ErrMiss
	}
	return &u, nil
}

// UserGeneration returns the user's invalidation counter.
func (c *Cache) UserGeneration(ctx context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userGens[id], nil
}

// SetUser caches a user if gen is still current.
func (c *Cache) SetUser(ctx context.Context, user *model.UserWithMessages, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userGens[user.ID] == gen {
		c.users[user.ID] = *user
	}
	return nil
}

// InvalidateUser drops a cached user.
func (c *Cache) InvalidateUser(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, id)
	c.userGens[id]++
	return nil
}

// GetMessage returns a cached message.
func (c *Cache) GetMessage(ctx context.Context, id string) (*model.MessageWithUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.messages[id]
	if !ok {
		return nil, ErrMiss
	}
	return &m, nil
}

// MessageGeneration returns the message's invalidation counter.
func (c *Cache) MessageGeneration(ctx context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messageGens[id], nil
}

// SetMessage caches a message if gen is still current.
func (c *Cache) SetMessage(ctx context.Context, message *model.MessageWithUser, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.messageGens[message.ID] == gen {
		c.messages[message.ID] = *message
	}
	return nil
}

// InvalidateMessages drops cached messages.
func (c *Cache) InvalidateMessages(ctx context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.messages, id)
		c.messageGens[id]++
	}
	return nil
}

// HasUser reports whether id is cached.
func (c *Cache) HasUser(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.users[id]
	return ok
}

// HasMessage reports whether id is cached.
func (c *Cache) HasMessage(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.messages[id]
	return ok
}
