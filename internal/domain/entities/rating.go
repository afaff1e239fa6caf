package entities

import (
	"math"
	"time"
)

const (
	MinScore         = 1
	MaxScore         = 5
	MaxCommentLength = 1000
)

// Rating is one user's score of another for a request.
// At most one exists per (RaterID, AssignmentRequestID).
type Rating struct {
	ID                  string
	RaterID             string
	RatedID             string
	Score               int
	Comment             string
	AssignmentRequestID string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RatingSummary is the aggregate over all ratings received by a user.
type RatingSummary struct {
	Average float64
	Count   int
}

// ValidScore reports whether score is within 1..5.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// RoundAverage rounds to two decimal places, halves away from zero,
// matching Postgres ROUND(numeric, 2).
func RoundAverage(avg float64) float64 {
	return math.Round(avg*100) / 100
}

// Summarize computes the aggregate of scores.
func Summarize(scores []int) RatingSummary {
	if len(scores) == 0 {
		return RatingSummary{}
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	return RatingSummary{
		Average: RoundAverage(float64(total) / float64(len(scores))),
		Count:   len(scores),
	}
}
