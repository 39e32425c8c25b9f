package session

import (
	"context"
	"encoding/json"
	"errors"

	"grocerbot/internal/cart"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrInvalidID = errors.New("invalid session id")
)

// Store persists sessions between requests. Implementations hand out
// independent copies: mutating a loaded session has no effect until Save.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func encode(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Cart == nil {
		s.Cart = cart.New(s.CreatedAt)
	}
	if s.History == nil {
		s.History = []ChatTurn{}
	}
	if s.UserContext.LastOrderItems == nil {
		s.UserContext.LastOrderItems = []OrderedItem{}
	}
	if s.UserContext.Preferences == nil {
		s.UserContext.Preferences = map[string]string{}
	}
	return &s, nil
}
