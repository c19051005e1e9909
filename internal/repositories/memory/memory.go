// Package memory is test support: map-backed implementations of the
// repository interfaces plus fakes for the transactor, publisher, session
// store and image store. Only _test.go files import it. Transactions are
// simulated by passing a nil *gorm.DB.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	. "resorthub/internal/models"
	"resorthub/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the shared state behind every memory repository.
type Store struct {
	mu sync.Mutex

	seq     int64
	created map[uuid.UUID]int64

	customers          map[uuid.UUID]Customer
	owners             map[uuid.UUID]Owner
	admins             map[uuid.UUID]Admin
	listings           map[uuid.UUID]Listing
	reservations       map[uuid.UUID]Reservation
	conversations      map[uuid.UUID]Conversation
	adminConversations map[uuid.UUID]AdminConversation
	messages           []Message
	notifications      []Notification

	// ClearedCaches counts listing cache invalidations per owner.
	ClearedCaches map[uuid.UUID]int
	// FailNotifications makes every notification insert fail.
	FailNotifications bool
}

func NewStore() *Store {
	return &Store{
		created:            make(map[uuid.UUID]int64),
		customers:          make(map[uuid.UUID]Customer),
		owners:             make(map[uuid.UUID]Owner),
		admins:             make(map[uuid.UUID]Admin),
		listings:           make(map[uuid.UUID]Listing),
		reservations:       make(map[uuid.UUID]Reservation),
		conversations:      make(map[uuid.UUID]Conversation),
		adminConversations: make(map[uuid.UUID]AdminConversation),
		ClearedCaches:      make(map[uuid.UUID]int),
	}
}

// Repository wires every memory repository into the aggregate controllers take.
func (s *Store) Repository() repositories.Repository {
	return repositories.Repository{
		Customer:     &customerRepository{s},
		Owner:        &ownerRepository{s},
		Admin:        &adminRepository{s},
		Listing:      &listingRepository{s},
		Reservation:  &reservationRepository{s},
		Conversation: &conversationRepository{s},
		Message:      &messageRepository{s},
		Notification: &notificationRepository{s},
	}
}

// Reservations returns a snapshot of every stored reservation.
func (s *Store) Reservations() []Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, r)
	}
	sortNewest(s, out, func(r Reservation) uuid.UUID { return r.ID })
	return out
}

func (s *Store) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func (s *Store) Listing(id uuid.UUID) (Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	return l, ok
}

// stamp assigns id and creation order. Callers hold s.mu.
func (s *Store) stamp(base *BaseUUIDModel) error {
	if err := base.EnsureID(); err != nil {
		return err
	}
	s.seq++
	s.created[base.ID] = s.seq
	now := time.Now().UTC()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
	return nil
}

func sortNewest[T any](s *Store, items []T, id func(T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.created[id(items[i])] > s.created[id(items[j])]
	})
}

func sortOldest[T any](s *Store, items []T, id func(T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.created[id(items[i])] < s.created[id(items[j])]
	})
}

// Transactor runs fn directly with a nil transaction.
type Transactor struct {
	// Calls counts Execute invocations.
	Calls int
}

func (t *Transactor) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	t.Calls++
	return fn(ctx, nil)
}
