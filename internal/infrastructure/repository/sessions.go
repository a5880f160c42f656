package repository

import (
	"context"
	"fmt"

	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
)

const CollectionSessions = "sessions"

// SessionRepository keeps refresh-token sessions next to the aggregates.
type SessionRepository struct {
	docs store.Collection[auth.Session]
}

var _ auth.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository(st store.DocumentStore) *SessionRepository {
	return &SessionRepository{docs: store.NewCollection[auth.Session](st, CollectionSessions)}
}

// Create stores a new session. Session ids are never reused.
func (r *SessionRepository) Create(ctx context.Context, s auth.Session) error {
	if _, err := r.docs.Put(ctx, s.ID, s, map[string]string{keyAccount: s.AccountID}, 0); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (auth.Session, bool, error) {
	e, ok, err := r.docs.Get(ctx, id)
	if err != nil {
		return auth.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return e.State, ok, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, id)
}

// DeleteByAccount revokes every session of the account.
func (r *SessionRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	entries, err := r.docs.Find(ctx, keyAccount, accountID)
	if err != nil {
		return fmt.Errorf("find sessions: %w", err)
	}
	for _, e := range entries {
		if err := r.docs.Delete(ctx, e.State.ID); err != nil {
			return fmt.Errorf("delete session %s: %w", e.State.ID, err)
		}
	}
	return nil
}
