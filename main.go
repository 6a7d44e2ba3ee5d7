package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"online-voting-backend/cache"
	"online-voting-backend/database"
	"online-voting-backend/handlers"
	"online-voting-backend/lifecycle"
	"online-voting-backend/models"
	"online-voting-backend/repository"
	"online-voting-backend/routes"
	"online-voting-backend/service"
	"online-voting-backend/sweeper"
	"online-voting-backend/websocket"
)

func main() {
	// 加载.env文件（不存在时忽略）
	if err := godotenv.Load(); err == nil {
		log.Println("已加载.env配置")
	}

	// 初始化数据库连接
	if err := database.InitDB(); err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	log.Println("数据库连接初始化成功")

	// 初始化Redis连接，失败时降级运行
	if err := cache.InitRedis(); err != nil {
		log.Printf("警告: Redis初始化失败: %v", err)
	}
	cache.InitDistLock()

	// 初始化数据仓库
	electionRepo := repository.NewElectionRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)
	userDir := repository.NewUserDirectory(database.DB)
	roleRepo := repository.NewRoleRepository(database.DB)

	// 初始化WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// 初始化服务
	electionService := service.NewElectionService(electionRepo, userDir, roleRepo)
	voteService := service.NewVoteService(voteRepo, electionRepo, roleRepo)
	tallyService := service.NewTallyService(voteRepo, electionRepo, userDir)
	tallyCache := cache.NewTallyCache()

	// 初始化状态扫描器，Redis可用时在分布式锁内执行
	var locker sweeper.Locker
	if lockService := cache.GetLockService(); lockService != nil {
		locker = lockService
	}
	sw := sweeper.New(electionRepo, locker)
	sw.OnTransition(func(tr lifecycle.Transition) {
		// 状态变化推送给订阅该选举的客户端
		wsHub.BroadcastToElection(tr.ElectionID, &models.WebSocketMessage{
			Type:       "STATUS_UPDATE",
			ElectionID: tr.ElectionID,
			Payload:    tr,
		})
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sw.Run(sweepCtx)

	// 设置路由
	router := routes.SetupRouter(routes.Handlers{
		Elections: handlers.NewElectionHandler(electionService, sw),
		Votes:     handlers.NewVoteHandler(voteService, tallyService, tallyCache, wsHub),
		Results:   handlers.NewResultsHandler(tallyService, tallyCache),
		WS:        websocket.NewHandler(wsHub),
	})
	log.Println("路由设置完成")

	// 启动服务器
	srv := routes.StartServer(router)
	log.Println("服务器启动成功")

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("关闭服务器...")

	// 停止状态扫描器
	stopSweeper()

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 不接受新请求并等待现有请求完成
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务器强制关闭: %v", err)
	}

	// 关闭数据库和Redis连接
	database.CloseDB()
	cache.CloseRedis()

	log.Println("服务器优雅关闭")
}
