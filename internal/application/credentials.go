package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/statpanel/internal/domain/model"
	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// CredentialStore persists the bearer credential under CredentialKey.
type CredentialStore struct {
	store  driven.KVStore
	logger *slog.Logger
}

// NewCredentialStore creates a CredentialStore backed by the context's store.
func NewCredentialStore(sc *SessionContext) *CredentialStore {
	return &CredentialStore{store: sc.store, logger: sc.logger}
}

// Save writes raw verbatim.
func (s *CredentialStore) Save(ctx context.Context, raw string) error {
	if err := s.store.Set(ctx, CredentialKey, raw); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Read returns the normalized stored credential. A missing or blank value is
// treated as a logout: the key is cleared and ok is false. The activity
// record is left alone.
func (s *CredentialStore) Read(ctx context.Context) (cred model.Credential, ok bool, err error) {
	raw, found, err := s.store.Get(ctx, CredentialKey)
	if err != nil {
		return "", false, fmt.Errorf("read credential: %w", err)
	}

	if found {
		if cred, ok = model.ParseCredential(raw); ok {
			return cred, true, nil
		}
	}

	s.logger.Debug("no credential stored")
	if err := s.Clear(ctx); err != nil {
		return "", false, err
	}
	return "", false, nil
}

// Clear removes the stored credential. Clearing an absent credential is a
// no-op.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, CredentialKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
