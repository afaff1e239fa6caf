package postgres

import "time"

// UserModel is the gorm model of users.
type UserModel struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	GoogleID       string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name           string    `gorm:"type:varchar(255);not null"`
	ProfilePicture string    `gorm:"type:text;not null;default:''"`
	Role           string    `gorm:"type:varchar(20);not null;index"`
	WriterStatus   *string   `gorm:"type:varchar(20)"`
	Rating         float64   `gorm:"type:numeric(3,2);not null;default:0"`
	TotalRatings   int       `gorm:"not null;default:0"`
	WhatsAppNumber *string   `gorm:"column:whatsapp_number;type:varchar(20)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// AssignmentRequestModel is the gorm model of assignment_requests.
type AssignmentRequestModel struct {
	ID                 string    `gorm:"type:uuid;primaryKey"`
	ClientID           string    `gorm:"type:uuid;not null;index"`
	CourseName         string    `gorm:"type:varchar(255);not null"`
	CourseCode         string    `gorm:"type:varchar(50);not null"`
	AssignmentType     string    `gorm:"type:varchar(100);not null"`
	NumPages           int       `gorm:"not null"`
	Deadline           time.Time `gorm:"not null"`
	EstimatedCost      int       `gorm:"not null"`
	Status             string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt          time.Time `gorm:"not null"`
	ExpirationDeadline time.Time `gorm:"not null"`
}

func (AssignmentRequestModel) TableName() string {
	return "assignment_requests"
}

// AssignmentModel is the gorm model of assignments.
type AssignmentModel struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	RequestID   string     `gorm:"type:uuid;uniqueIndex;not null"`
	WriterID    string     `gorm:"type:uuid;not null;index"`
	ClientID    string     `gorm:"type:uuid;not null;index"`
	Status      string     `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time
}

func (AssignmentModel) TableName() string {
	return "assignments"
}

// RatingModel is the gorm model of ratings.
type RatingModel struct {
	ID                  string    `gorm:"type:uuid;primaryKey"`
	RaterID             string    `gorm:"type:uuid;not null;uniqueIndex:ratings_rater_request_key"`
	RatedID             string    `gorm:"type:uuid;not null;index"`
	Rating              int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment             string    `gorm:"type:text;not null;default:''"`
	AssignmentRequestID string    `gorm:"type:uuid;not null;uniqueIndex:ratings_rater_request_key"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

func (RatingModel) TableName() string {
	return "ratings"
}

// WriterPortfolioModel is the gorm model of writer_portfolios.
type WriterPortfolioModel struct {
	WriterID        string    `gorm:"type:uuid;primaryKey"`
	SampleWorkImage string    `gorm:"type:text;not null;default:''"`
	Description     string    `gorm:"type:text;not null;default:''"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (WriterPortfolioModel) TableName() string {
	return "writer_portfolios"
}
