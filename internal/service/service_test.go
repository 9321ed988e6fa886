package service

import (
	"context"
	"testing"

	"tablepick/internal/database"
	"tablepick/internal/models"
	"tablepick/internal/repository"
	"tablepick/pkg/hotpepper"
	"tablepick/pkg/openai"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()
	u := &models.User{Nickname: nickname}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// createGroup makes host the first member, the way the create-group
// endpoint does.
func createGroup(t *testing.T, db *gorm.DB, host *models.User, members ...*models.User) *models.Group {
	t.Helper()
	g := &models.Group{Name: "dinner", HostUserID: host.ID}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	groups := repository.NewGroupRepository(db)
	if err := groups.AddMember(g, host); err != nil {
		t.Fatalf("add host: %v", err)
	}
	for _, m := range members {
		if err := groups.AddMember(g, m); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}
	return g
}

func createRecommendation(t *testing.T, db *gorm.DB, groupID string, names ...string) (*models.Recommendation, []models.RestaurantCandidate) {
	t.Helper()
	candidates := make([]models.RestaurantCandidate, 0, len(names))
	for _, n := range names {
		candidates = append(candidates, models.RestaurantCandidate{Name: n})
	}
	rec := &models.Recommendation{GroupID: groupID}
	repo := repository.NewRecommendationRepository(db)
	if err := repo.CreateWithCandidates(rec, candidates); err != nil {
		t.Fatalf("create recommendation: %v", err)
	}
	return rec, rec.Candidates
}

func completeInterview(t *testing.T, db *gorm.DB, groupID, userID string) {
	t.Helper()
	svc := NewInterviewService(
		repository.NewInterviewRepository(db),
		repository.NewGroupRepository(db),
		repository.NewUserRepository(db),
		openai.NewClient("", "", 0),
	)
	interview, err := svc.Start(groupID, userID)
	if err != nil {
		t.Fatalf("start interview: %v", err)
	}
	if _, _, err := svc.Complete(context.Background(), interview.ID); err != nil {
		t.Fatalf("complete interview: %v", err)
	}
}

// fakeDirectory returns a fixed result set, or an injected error.
type fakeDirectory struct {
	restaurants []hotpepper.Restaurant
	err         error
	lastQuery   hotpepper.Query
	calls       int
}

func (d *fakeDirectory) Search(ctx context.Context, q hotpepper.Query) ([]hotpepper.Restaurant, error) {
	d.lastQuery = q
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.restaurants, nil
}

func newRecommendationService(db *gorm.DB, directory hotpepper.Directory) *RecommendationService {
	return NewRecommendationService(
		repository.NewGroupRepository(db),
		repository.NewInterviewRepository(db),
		repository.NewPreferenceRepository(db),
		repository.NewRecommendationRepository(db),
		directory,
	)
}
