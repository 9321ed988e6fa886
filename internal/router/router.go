package router

import (
	"net/http"
	"time"

	"tablepick/config"
	"tablepick/internal/handler"
	"tablepick/internal/middleware"
	"tablepick/internal/repository"
	"tablepick/internal/service"
	"tablepick/internal/ws"
	"tablepick/pkg/hotpepper"
	"tablepick/pkg/openai"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services, and handlers onto the route tree.
// The directory and extractor are injected so main (and tests) choose
// the live clients or the demo/scripted ones.
func Setup(cfg *config.Config, db *gorm.DB, directory hotpepper.Directory, extractor openai.Extractor) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitByIP(middleware.NewLimiter(100, time.Minute)))
	// The external directory has its own quota; keep per-group search
	// traffic well under it.
	searchLimit := middleware.RateLimitByGroup(middleware.NewLimiter(10, time.Minute))

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	hearingRepo := repository.NewHearingRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)
	recRepo := repository.NewRecommendationRepository(db)

	lobby := ws.NewLobbyHub()

	recSvc := service.NewRecommendationService(groupRepo, interviewRepo, prefRepo, recRepo, directory)
	voteSvc := service.NewVoteService(db)
	interviewSvc := service.NewInterviewService(interviewRepo, groupRepo, userRepo, extractor)

	userHandler := handler.NewUserHandler(userRepo)
	groupHandler := handler.NewGroupHandler(groupRepo, userRepo, lobby)
	prefHandler := handler.NewPreferenceHandler(prefRepo, groupRepo, recSvc)
	hearingHandler := handler.NewHearingHandler(hearingRepo, groupRepo, userRepo)
	interviewHandler := handler.NewInterviewHandler(interviewSvc, lobby)
	recHandler := handler.NewRecommendationHandler(recSvc, voteSvc, recRepo, lobby)

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/anonymous", userHandler.CreateAnonymous)
			users.POST("", userHandler.Create)
			users.GET("/:user_id", userHandler.Get)
			users.PUT("/:user_id", userHandler.Update)
			users.DELETE("/:user_id", userHandler.Delete)
			users.GET("/:user_id/interviews", interviewHandler.ListByUser)
		}

		groups := api.Group("/groups")
		{
			groups.POST("", groupHandler.Create)
			groups.POST("/join", groupHandler.Join)
			groups.GET("/:group_id", groupHandler.Get)
			groups.PUT("/:group_id", groupHandler.Update)
			groups.POST("/:group_id/members/:user_id", groupHandler.AddMember)
			groups.DELETE("/:group_id/members/:user_id", groupHandler.RemoveMember)

			groups.POST("/:group_id/users/:user_id/search-preferences", prefHandler.Submit)
			groups.GET("/:group_id/users/:user_id/search-preferences", prefHandler.Get)
			groups.PUT("/:group_id/users/:user_id/search-preferences", prefHandler.Patch)
			groups.GET("/:group_id/search-preferences", prefHandler.ListByGroup)
			groups.POST("/:group_id/search-restaurants", searchLimit, prefHandler.Search)

			groups.POST("/:group_id/users/:user_id/interviews", interviewHandler.Start)
			groups.GET("/:group_id/interviews", interviewHandler.ListByGroup)
			groups.GET("/:group_id/interview-status", interviewHandler.GroupStatus)

			groups.POST("/:group_id/recommendations", searchLimit, recHandler.Generate)
			groups.GET("/:group_id/recommendations", recHandler.GetByGroup)
			groups.GET("/:group_id/votes", recHandler.Votes)
			groups.GET("/:group_id/user/:user_id/vote", recHandler.UserVote)
			groups.POST("/:group_id/final-decision", recHandler.SetFinalDecision)
			groups.GET("/:group_id/final-decision", recHandler.FinalDecision)
		}

		hearings := api.Group("/hearings")
		{
			hearings.POST("", hearingHandler.Create)
			hearings.GET("/:hearing_id", hearingHandler.Get)
			hearings.PUT("/:hearing_id", hearingHandler.Update)
			hearings.GET("/group/:group_id", hearingHandler.ListByGroup)
			hearings.GET("/user/:user_id", hearingHandler.ListByUser)
			hearings.GET("/group/:group_id/user/:user_id", hearingHandler.ListByGroupAndUser)
		}

		interviews := api.Group("/interviews")
		{
			interviews.GET("/:interview_id", interviewHandler.Get)
			interviews.POST("/:interview_id/chat", interviewHandler.Chat)
			interviews.POST("/:interview_id/complete", interviewHandler.Complete)
		}

		api.GET("/recommendations/:recommendation_id", recHandler.Get)
		api.POST("/candidates/:candidate_id/vote", recHandler.Vote)
	}

	r.GET("/ws/lobby", ws.UpgradeLobbyWS(lobby, groupRepo))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
