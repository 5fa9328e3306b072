package provider

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/venice-quiz-frame/internal/frame"
)

// Publisher forwards a discovered provider to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, detail frame.ProviderDetail) error
}

// Store keeps the providers announced by the host, de-duplicated by UUID, and
// hands them to the wallet collaborator through an optional Publisher.
type Store struct {
	publisher Publisher
	logger    zerolog.Logger

	mu        sync.RWMutex
	providers []frame.ProviderDetail
}

var _ frame.ProviderSink = (*Store)(nil)

// NewStore creates a store. publisher may be nil.
func NewStore(publisher Publisher, logger zerolog.Logger) *Store {
	return &Store{
		publisher: publisher,
		logger:    logger.With().Str("component", "provider_store").Logger(),
	}
}

// Announce records detail and publishes it the first time its UUID is seen.
func (s *Store) Announce(ctx context.Context, detail frame.ProviderDetail) {
	s.mu.Lock()
	for _, known := range s.providers {
		if known.UUID == detail.UUID {
			s.mu.Unlock()
			return
		}
	}
	s.providers = append(s.providers, detail)
	s.mu.Unlock()

	s.logger.Info().
		Str("uuid", detail.UUID).
		Str("rdns", detail.RDNS).
		Str("name", detail.Name).
		Msg("provider discovered")

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, detail); err != nil {
		s.logger.Warn().Err(err).Str("uuid", detail.UUID).Msg("provider publish failed")
	}
}

// Providers returns the discovered providers in announcement order.
func (s *Store) Providers() []frame.ProviderDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]frame.ProviderDetail(nil), s.providers...)
}
