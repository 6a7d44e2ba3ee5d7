package routes

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"online-voting-backend/handlers"
	"online-voting-backend/websocket"
)

// Server 是HTTP服务器的封装
type Server struct {
	*http.Server
}

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Elections *handlers.ElectionHandler
	Votes     *handlers.VoteHandler
	Results   *handlers.ResultsHandler
	WS        *websocket.Handler
}

// SetupRouter 设置和配置Gin路由
func SetupRouter(h Handlers) *gin.Engine {
	router := gin.Default()

	// 配置CORS中间件
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // 生产环境中应限制为前端域名
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 初始化限流器
	handlers.InitRateLimiters()

	// 定义API路由
	api := router.Group("/api")
	{
		// 全局API限流中间件
		api.Use(handlers.RateLimitMiddleware())

		// 健康检查端点
		api.GET("/health", handlers.HealthCheck)
		api.GET("/status", handlers.SystemStatus)

		// 选举管理端点
		elections := api.Group("/elections")
		{
			elections.POST("", h.Elections.Create)
			elections.GET("", h.Elections.List)
			elections.GET("/:id", h.Elections.Get)
			elections.PUT("/:id", h.Elections.Update)
			elections.DELETE("/:id", h.Elections.Delete)

			// 候选人管理
			elections.POST("/:id/candidates", h.Elections.AddCandidates)
			elections.DELETE("/:id/candidates/:candidateId", h.Elections.RemoveCandidate)

			// 投票操作
			elections.POST("/:id/vote", h.Votes.CastVote)
			elections.GET("/:id/vote-status", h.Votes.VoteStatus)
			elections.GET("/:id/turnout", h.Votes.Turnout)

			// 统计结果
			elections.GET("/:id/results", h.Results.GetResults)
			elections.GET("/:id/live", h.Results.GetLive)
		}

		// 管理员相关API
		admin := api.Group("/admin")
		{
			admin.POST("/elections/:id/close", h.Elections.Close)
			admin.POST("/sweep", h.Elections.Sweep)
		}
	}

	// WebSocket实时统计推送
	h.WS.RegisterRoutes(router)

	return router
}

// StartServer 启动HTTP服务器
func StartServer(router *gin.Engine) *Server {
	// 从环境变量获取端口，默认为8090
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8090" // 默认端口
	}

	addr := ":" + port

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	// 在单独的goroutine中启动服务器
	go func() {
		log.Printf("服务器启动在 %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	return srv
}
