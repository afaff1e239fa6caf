package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/valueobjects"
	"github.com/writify/writify-backend/internal/infrastructure/logging"
	"github.com/writify/writify-backend/internal/services"
)

// setupDatabase starts a throwaway Postgres, migrates it and returns a gorm handle.
func setupDatabase(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("writify"),
		tcpostgres.WithUsername("writify"),
		tcpostgres.WithPassword("writify"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	if err := Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return db, dsn
}

func repositorySet(db *gorm.DB) services.Repositories {
	return services.Repositories{
		Users:       NewUserRepository(db),
		Requests:    NewRequestRepository(db),
		Assignments: NewAssignmentRepository(db),
		Ratings:     NewRatingRepository(db),
		Portfolios:  NewPortfolioRepository(db),
		Queries:     NewQueryRepository(db),
	}
}

func seedUser(t *testing.T, repos services.Repositories, role entities.Role, name string) *entities.User {
	t.Helper()
	id := uuid.NewString()
	email, _ := valueobjects.NewEmail(id[:8] + "@uni.ac.ke")
	now := time.Now().UTC()
	u := &entities.User{
		ID:        id,
		GoogleID:  "g-" + id,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u.ChangeRole(role)
	if err := repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestPostgres_Lifecycle(t *testing.T) {
	db, _ := setupDatabase(t)
	ctx := context.Background()
	repos := repositorySet(db)
	uow := NewUnitOfWork(db)
	log := logging.NewNop()

	requests := services.NewRequestService(repos, uow, log)
	ratings := services.NewRatingService(repos, uow, log)
	assignments := services.NewAssignmentService(repos, uow, log)

	client := seedUser(t, repos, entities.RoleStudent, "Amina")
	writers := make([]*entities.User, 6)
	for i := range writers {
		writers[i] = seedUser(t, repos, entities.RoleWriter, "writer")
	}

	req, err := requests.Create(ctx, client, services.CreateRequestInput{
		CourseName:     "Databases",
		CourseCode:     "CS 220",
		AssignmentType: "Report",
		NumPages:       "5",
		Deadline:       "2030-01-15",
		EstimatedCost:  "482",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if req.EstimatedCost != 500 {
		t.Errorf("estimated cost = %d, want 500", req.EstimatedCost)
	}

	t.Run("concurrent accepts produce one assignment", func(t *testing.T) {
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins []string
		)
		for _, w := range writers {
			wg.Add(1)
			go func(w *entities.User) {
				defer wg.Done()
				res, err := requests.Accept(ctx, w, req.ID)
				if err != nil {
					if domainerrors.KindOf(err) != domainerrors.KindConflict {
						t.Errorf("unexpected error: %v", err)
					}
					return
				}
				mu.Lock()
				wins = append(wins, res.Assignment.WriterID)
				mu.Unlock()
			}(w)
		}
		wg.Wait()

		if len(wins) != 1 {
			t.Fatalf("expected exactly one winner, got %d", len(wins))
		}
		var count int64
		db.Model(&AssignmentModel{}).Where("request_id = ?", req.ID).Count(&count)
		if count != 1 {
			t.Errorf("assignments for request = %d, want 1", count)
		}
	})

	t.Run("rating completes the assignment and aggregates", func(t *testing.T) {
		a, err := repos.Assignments.FindByRequestID(ctx, req.ID)
		if err != nil || a == nil {
			t.Fatalf("find assignment: %v", err)
		}
		writer, _ := repos.Users.FindByID(ctx, a.WriterID)
		if writer.WriterStatus == nil || *writer.WriterStatus != entities.WriterBusy {
			t.Errorf("writer status = %v, want busy", writer.WriterStatus)
		}

		res, err := ratings.Submit(ctx, client, services.SubmitRatingInput{
			RatedID: writer.ID, AssignmentRequestID: req.ID, Rating: 4, Comment: "solid",
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !res.AssignmentCompleted {
			t.Error("expected assignment completion")
		}

		res, err = ratings.Submit(ctx, client, services.SubmitRatingInput{
			RatedID: writer.ID, AssignmentRequestID: req.ID, Rating: 5,
		})
		if err != nil {
			t.Fatalf("resubmit: %v", err)
		}
		if !res.Updated {
			t.Error("expected in-place update")
		}

		writer, _ = repos.Users.FindByID(ctx, writer.ID)
		if writer.Rating != 5 || writer.TotalRatings != 1 {
			t.Errorf("aggregate = %.2f/%d, want 5.00/1", writer.Rating, writer.TotalRatings)
		}

		items, err := assignments.MyAssignments(ctx, client)
		if err != nil {
			t.Fatalf("my assignments: %v", err)
		}
		if len(items) != 1 || items[0].Assignment == nil || items[0].Assignment.Status != "completed" {
			t.Fatalf("unexpected listing %+v", items)
		}
		if items[0].HasRatedWriter == nil || !*items[0].HasRatedWriter {
			t.Error("expected has_rated_writer=true")
		}
	})

	t.Run("open listing hides assigned requests", func(t *testing.T) {
		open, err := requests.ListOpen(ctx)
		if err != nil {
			t.Fatalf("list open: %v", err)
		}
		for _, r := range open {
			if r.ID == req.ID {
				t.Error("assigned request listed as open")
			}
		}
	})
}

func TestRatingRepository_SummarizeRounds(t *testing.T) {
	db, _ := setupDatabase(t)
	ctx := context.Background()
	repos := repositorySet(db)

	rated := seedUser(t, repos, entities.RoleWriter, "Brian")
	now := time.Now().UTC()
	for _, score := range []int{4, 5, 5} {
		rater := seedUser(t, repos, entities.RoleClient, "rater")
		reqID := uuid.NewString()
		if err := repos.Requests.Create(ctx, &entities.AssignmentRequest{
			ID: reqID, ClientID: rater.ID, CourseName: "c", CourseCode: "c", AssignmentType: "t",
			NumPages: 1, Deadline: now, Status: entities.RequestOpen,
			CreatedAt: now, ExpirationDeadline: now.Add(entities.RequestLifetime),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := repos.Ratings.Upsert(ctx, &entities.Rating{
			ID: uuid.NewString(), RaterID: rater.ID, RatedID: rated.ID, Score: score,
			AssignmentRequestID: reqID, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := repos.Ratings.Summarize(ctx, rated.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Average != 4.67 || summary.Count != 3 {
		t.Errorf("summary = %+v, want 4.67/3", summary)
	}

	empty, err := repos.Ratings.Summarize(ctx, uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	if empty.Average != 0 || empty.Count != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestPostgres_MalformedInputIsNotAServerError(t *testing.T) {
	db, _ := setupDatabase(t)
	ctx := context.Background()
	repos := repositorySet(db)
	uow := NewUnitOfWork(db)
	log := logging.NewNop()

	requests := services.NewRequestService(repos, uow, log)
	assignments := services.NewAssignmentService(repos, uow, log)
	ratings := services.NewRatingService(repos, uow, log)
	writers := services.NewWriterService(repos.Queries, func(s string) string { return s }, log)
	auth := services.NewAuthService(repos.Users, "uni.ac.ke", log)

	client := seedUser(t, repos, entities.RoleClient, "Amina")
	writer := seedUser(t, repos, entities.RoleWriter, "Brian")

	tests := []struct {
		name string
		call func() error
		want *domainerrors.DomainError
	}{
		{"writer detail", func() error {
			_, err := writers.Get(ctx, "does-not-exist")
			return err
		}, domainerrors.ErrWriterNotFound},
		{"accept", func() error {
			_, err := requests.Accept(ctx, writer, "42")
			return err
		}, domainerrors.ErrRequestNotFound},
		{"complete", func() error {
			_, err := assignments.Complete(ctx, writer, "abc")
			return err
		}, domainerrors.ErrAssignmentNotFound},
		{"session user", func() error {
			_, err := auth.CurrentUser(ctx, "urn:uuid:"+uuid.NewString())
			return err
		}, domainerrors.ErrUserNotFound},
		{"rating ids", func() error {
			_, err := ratings.Submit(ctx, client, services.SubmitRatingInput{
				RatedID: "writer", AssignmentRequestID: "request", Rating: 5,
			})
			return err
		}, domainerrors.ErrValidation},
		{"oversized request", func() error {
			_, err := requests.Create(ctx, client, services.CreateRequestInput{
				CourseName: "Databases", CourseCode: "CS 220", AssignmentType: "Report",
				NumPages: "99999999999", Deadline: "2030-01-15", EstimatedCost: "1e300",
			})
			return err
		}, domainerrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if domainerrors.KindOf(err) == domainerrors.KindServer {
				t.Errorf("%v surfaced as a server error", err)
			}
		})
	}
}

func TestPostgres_ConcurrentFirstSubmissions(t *testing.T) {
	db, _ := setupDatabase(t)
	ctx := context.Background()
	repos := repositorySet(db)
	uow := NewUnitOfWork(db)
	log := logging.NewNop()

	requests := services.NewRequestService(repos, uow, log)
	ratings := services.NewRatingService(repos, uow, log)
	auth := services.NewAuthService(repos.Users, "uni.ac.ke", log)

	t.Run("ratings from one rater collapse into one row", func(t *testing.T) {
		client := seedUser(t, repos, entities.RoleClient, "Amina")
		writer := seedUser(t, repos, entities.RoleWriter, "Brian")
		req, err := requests.Create(ctx, client, services.CreateRequestInput{
			CourseName: "Databases", CourseCode: "CS 220", AssignmentType: "Report",
			NumPages: "5", Deadline: "2030-01-15", EstimatedCost: "500",
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := requests.Accept(ctx, writer, req.ID); err != nil {
			t.Fatal(err)
		}

		const n = 6
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			inserted int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(score int) {
				defer wg.Done()
				res, err := ratings.Submit(ctx, client, services.SubmitRatingInput{
					RatedID: writer.ID, AssignmentRequestID: req.ID, Rating: score,
				})
				if err != nil {
					t.Errorf("submit: %v", err)
					return
				}
				if !res.Updated {
					mu.Lock()
					inserted++
					mu.Unlock()
				}
			}(i%5 + 1)
		}
		wg.Wait()

		if inserted != 1 {
			t.Errorf("inserted = %d, want 1", inserted)
		}
		var count int64
		db.Model(&RatingModel{}).Where("assignment_request_id = ?", req.ID).Count(&count)
		if count != 1 {
			t.Errorf("ratings for request = %d, want 1", count)
		}
		stored, _ := repos.Users.FindByID(ctx, writer.ID)
		if stored.TotalRatings != 1 {
			t.Errorf("total ratings = %d, want 1", stored.TotalRatings)
		}
	})

	t.Run("first logins of one account create one user", func(t *testing.T) {
		identity := &ports.Identity{
			Subject: "google-race", Email: "race@uni.ac.ke", EmailVerified: true, Name: "Race",
		}

		const n = 6
		ids := make([]string, n)
		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				u, err := auth.Login(ctx, identity)
				if err != nil {
					t.Errorf("login: %v", err)
					return
				}
				ids[i] = u.ID
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			if id != ids[0] {
				t.Fatalf("logins returned different users: %v", ids)
			}
		}
		var count int64
		db.Model(&UserModel{}).Where("google_id = ?", identity.Subject).Count(&count)
		if count != 1 {
			t.Errorf("users for google id = %d, want 1", count)
		}
	})
}
