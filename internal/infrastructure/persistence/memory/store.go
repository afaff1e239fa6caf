// Package memory keeps every repository in process memory. It backs the
// service and handler tests and the API when no database is configured.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/writify/writify-backend/internal/domain"
	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/repositories"
)

// ErrDuplicateKey mirrors a unique constraint violation.
var ErrDuplicateKey = errors.New("memory: duplicate key")

type txKey struct{}

// Store holds the data. Transactions are serialized and roll back by
// restoring a snapshot taken when they began.
type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	users       map[string]entities.User
	requests    map[string]entities.AssignmentRequest
	assignments map[string]entities.Assignment
	ratings     map[string]entities.Rating
	portfolios  map[string]entities.WriterPortfolio
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]entities.User),
		requests:    make(map[string]entities.AssignmentRequest),
		assignments: make(map[string]entities.Assignment),
		ratings:     make(map[string]entities.Rating),
		portfolios:  make(map[string]entities.WriterPortfolio),
	}
}

type snapshot struct {
	users       map[string]entities.User
	requests    map[string]entities.AssignmentRequest
	assignments map[string]entities.Assignment
	ratings     map[string]entities.Rating
	portfolios  map[string]entities.WriterPortfolio
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:       maps.Clone(s.users),
		requests:    maps.Clone(s.requests),
		assignments: maps.Clone(s.assignments),
		ratings:     maps.Clone(s.ratings),
		portfolios:  maps.Clone(s.portfolios),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.requests = snap.requests
	s.assignments = snap.assignments
	s.ratings = snap.ratings
	s.portfolios = snap.portfolios
}

// WithTransaction implements domain.UnitOfWork. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Repositories returns the repository set backed by s.
func (s *Store) Repositories() Repositories {
	return Repositories{
		Users:       &UserRepository{s: s},
		Requests:    &RequestRepository{s: s},
		Assignments: &AssignmentRepository{s: s},
		Ratings:     &RatingRepository{s: s},
		Portfolios:  &PortfolioRepository{s: s},
		Queries:     &QueryRepository{s: s},
	}
}

// Repositories is the set of repository implementations over one Store.
type Repositories struct {
	Users       repositories.UserRepository
	Requests    repositories.AssignmentRequestRepository
	Assignments repositories.AssignmentRepository
	Ratings     repositories.RatingRepository
	Portfolios  repositories.PortfolioRepository
	Queries     repositories.QueryRepository
}

var _ domain.UnitOfWork = (*Store)(nil)
