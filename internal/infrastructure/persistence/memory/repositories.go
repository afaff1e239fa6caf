package memory

import (
	"context"
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
)

// UserRepository implements repositories.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return ErrDuplicateKey
	}
	for _, u := range r.s.users {
		if u.GoogleID == user.GoogleID || u.Email == user.Email {
			return ErrDuplicateKey
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) UpsertByGoogleID(_ context.Context, user *entities.User) (*entities.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.GoogleID != user.GoogleID {
			continue
		}
		for otherID, other := range r.s.users {
			if otherID != id && other.Email == user.Email {
				return nil, false, ErrDuplicateKey
			}
		}
		u.Email = user.Email
		u.ProfilePicture = user.ProfilePicture
		if u.Name == "" {
			u.Name = user.Name
		}
		u.UpdatedAt = user.UpdatedAt
		r.s.users[id] = u
		return &u, false, nil
	}
	for _, u := range r.s.users {
		if u.ID == user.ID || u.Email == user.Email {
			return nil, false, ErrDuplicateKey
		}
	}
	r.s.users[user.ID] = *user
	stored := *user
	return &stored, true, nil
}

func (r *UserRepository) Update(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return nil
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) SetWriterStatus(_ context.Context, id string, status entities.WriterStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	u.SetWriterStatus(status)
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) UpdateRatingSummary(_ context.Context, id string, summary entities.RatingSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	u.ApplyRatingSummary(summary)
	r.s.users[id] = u
	return nil
}

// RequestRepository implements repositories.AssignmentRequestRepository.
type RequestRepository struct{ s *Store }

func (r *RequestRepository) Create(_ context.Context, request *entities.AssignmentRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[request.ID]; ok {
		return ErrDuplicateKey
	}
	r.s.requests[request.ID] = *request
	return nil
}

func (r *RequestRepository) FindByID(_ context.Context, id string) (*entities.AssignmentRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *RequestRepository) MarkAssigned(_ context.Context, id string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok || req.Status != entities.RequestOpen || !now.Before(req.ExpirationDeadline) {
		return false, nil
	}
	req.Status = entities.RequestAssigned
	r.s.requests[id] = req
	return true, nil
}

// AssignmentRepository implements repositories.AssignmentRepository.
type AssignmentRepository struct{ s *Store }

func (r *AssignmentRepository) Create(_ context.Context, assignment *entities.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.ID == assignment.ID || a.RequestID == assignment.RequestID {
			return ErrDuplicateKey
		}
	}
	r.s.assignments[assignment.ID] = *assignment
	return nil
}

func (r *AssignmentRepository) FindByID(_ context.Context, id string) (*entities.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AssignmentRepository) FindByRequestID(_ context.Context, requestID string) (*entities.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.assignments {
		if a.RequestID == requestID {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AssignmentRepository) MarkCompleted(_ context.Context, id string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok || !a.Complete(now) {
		return false, nil
	}
	r.s.assignments[id] = a
	return true, nil
}

func (r *AssignmentRepository) CompleteByRequest(_ context.Context, requestID string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.assignments {
		if a.RequestID != requestID {
			continue
		}
		if !a.Complete(now) {
			return false, nil
		}
		r.s.assignments[id] = a
		return true, nil
	}
	return false, nil
}

// RatingRepository implements repositories.RatingRepository.
type RatingRepository struct{ s *Store }

func (r *RatingRepository) FindByRaterAndRequest(_ context.Context, raterID, requestID string) (*entities.Rating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rt := range r.s.ratings {
		if rt.RaterID == raterID && rt.AssignmentRequestID == requestID {
			return &rt, nil
		}
	}
	return nil, nil
}

func (r *RatingRepository) Upsert(_ context.Context, rating *entities.Rating) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rt := range r.s.ratings {
		if rt.RaterID == rating.RaterID && rt.AssignmentRequestID == rating.AssignmentRequestID {
			rating.ID = id
			rating.CreatedAt = rt.CreatedAt
			r.s.ratings[id] = *rating
			return false, nil
		}
	}
	if _, ok := r.s.ratings[rating.ID]; ok {
		return false, ErrDuplicateKey
	}
	r.s.ratings[rating.ID] = *rating
	return true, nil
}

func (r *RatingRepository) Summarize(_ context.Context, ratedID string) (entities.RatingSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var scores []int
	for _, rt := range r.s.ratings {
		if rt.RatedID == ratedID {
			scores = append(scores, rt.Score)
		}
	}
	return entities.Summarize(scores), nil
}

// PortfolioRepository implements repositories.PortfolioRepository.
type PortfolioRepository struct{ s *Store }

func (r *PortfolioRepository) FindByWriterID(_ context.Context, writerID string) (*entities.WriterPortfolio, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.portfolios[writerID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PortfolioRepository) Upsert(_ context.Context, portfolio *entities.WriterPortfolio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.portfolios[portfolio.WriterID] = *portfolio
	return nil
}
