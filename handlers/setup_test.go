package handlers

import (
	"fmt"
	"testing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"online-voting-backend/cache"
	"online-voting-backend/database"
	"online-voting-backend/models"
	"online-voting-backend/repository"
	"online-voting-backend/service"
	"online-voting-backend/sweeper"
	"online-voting-backend/websocket"
)

// SetupTestEnvironment sets up the Gin router and in-memory SQLite database for testing.
func SetupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	testing.Init()
	gin.SetMode(gin.TestMode)

	// Use in-memory SQLite for testing
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		// Silence GORM logger for tests unless needed
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	electionRepo := repository.NewElectionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	userDir := repository.NewUserDirectory(db)
	roleRepo := repository.NewRoleRepository(db)

	electionService := service.NewElectionService(electionRepo, userDir, roleRepo)
	voteService := service.NewVoteService(voteRepo, electionRepo, roleRepo)
	tallyService := service.NewTallyService(voteRepo, electionRepo, userDir)

	// 测试里没有Redis，TallyCache会降级为永远未命中
	tallyCache := cache.NewTallyCache()
	hub := websocket.NewHub()
	go hub.Run()

	sw := sweeper.New(electionRepo, nil)

	electionHandler := NewElectionHandler(electionService, sw)
	voteHandler := NewVoteHandler(voteService, tallyService, tallyCache, hub)
	resultsHandler := NewResultsHandler(tallyService, tallyCache)

	// Setup Router
	router := gin.New()
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID"}
	router.Use(cors.New(config))

	// Setup Routes (same as in routes/router.go)
	api := router.Group("/api")
	{
		elections := api.Group("/elections")
		{
			elections.POST("", electionHandler.Create)
			elections.GET("", electionHandler.List)
			elections.GET("/:id", electionHandler.Get)
			elections.PUT("/:id", electionHandler.Update)
			elections.DELETE("/:id", electionHandler.Delete)

			elections.POST("/:id/candidates", electionHandler.AddCandidates)
			elections.DELETE("/:id/candidates/:candidateId", electionHandler.RemoveCandidate)

			elections.POST("/:id/vote", voteHandler.CastVote)
			elections.GET("/:id/vote-status", voteHandler.VoteStatus)
			elections.GET("/:id/turnout", voteHandler.Turnout)

			elections.GET("/:id/results", resultsHandler.GetResults)
			elections.GET("/:id/live", resultsHandler.GetLive)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/elections/:id/close", electionHandler.Close)
			admin.POST("/sweep", electionHandler.Sweep)
		}
	}

	return router, db
}

// seedUser 插入一个测试用户
func seedUser(t *testing.T, db *gorm.DB, id uint, name string) *models.User {
	t.Helper()
	user := &models.User{ID: id, FullName: name, Email: fmt.Sprintf("user%d@example.com", id)}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedElection 插入一个测试选举及其候选人
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
	require.NoError(t, db.Create(election).Error)
	for _, id := range candidateIDs {
		require.NoError(t, db.Create(&models.ElectionCandidate{ElectionID: election.ID, UserID: id}).Error)
	}
	return election
}
