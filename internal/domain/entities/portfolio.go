package entities

import "time"

const MaxPortfolioDescriptionLength = 2000

// WriterPortfolio showcases a writer's work. One per writer.
type WriterPortfolio struct {
	WriterID        string
	SampleWorkImage string
	Description     string
	UpdatedAt       time.Time
}
