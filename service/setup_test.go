package service

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"online-voting-backend/database"
	"online-voting-backend/models"
	"online-voting-backend/repository"
)

// newTestDB creates an isolated in-memory SQLite database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	// SQLite串行化访问，避免并发测试里出现database is locked
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// testServices 一次性构建全部服务
type testServices struct {
	db        *gorm.DB
	elections *ElectionService
	votes     *VoteService
	tally     *TallyService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db := newTestDB(t)

	electionRepo := repository.NewElectionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	userDir := repository.NewUserDirectory(db)
	roleRepo := repository.NewRoleRepository(db)

	return &testServices{
		db:        db,
		elections: NewElectionService(electionRepo, userDir, roleRepo),
		votes:     NewVoteService(voteRepo, electionRepo, roleRepo),
		tally:     NewTallyService(voteRepo, electionRepo, userDir),
	}
}

// seedUser 创建测试用户
func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{FullName: name, Email: name + "@example.com"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// seedElection 创建指定状态的测试选举
func seedElection(t *testing.T, db *gorm.DB, status models.ElectionStatus, candidateIDs ...uint) *models.Election {
	t.Helper()

	election := &models.Election{
		Title:      "Student Council 2024",
		StartDate:  "2024-10-10",
		StartTime:  "9:00 AM",
		EndDate:    "2024-10-10",
		EndTime:    "5:00 PM",
		Timezone:   "UTC",
		Status:     status,
		Visibility: models.VisibilityPublic,
		CreatedBy:  1,
	}
	for _, id := range candidateIDs {
		election.Candidates = append(election.Candidates, models.ElectionCandidate{UserID: id})
	}
	if err := db.Create(election).Error; err != nil {
		t.Fatalf("Failed to seed election: %v", err)
	}
	return election
}

func castVotes(t *testing.T, svc *VoteService, electionID, candidateID uint, voterIDs ...uint) {
	t.Helper()
	for _, voterID := range voterIDs {
		if _, err := svc.CastVote(context.Background(), voterID, electionID, candidateID); err != nil {
			t.Fatalf("Failed to cast vote for voter %d: %v", voterID, err)
		}
	}
}
