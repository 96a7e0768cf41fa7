package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipcap/config"
	"clipcap/internal/queue"
	"clipcap/internal/router"
	"clipcap/internal/service"
	"clipcap/log"
)

// StartBackend starts the HTTP API and, when Redis is configured, the asynq
// worker consuming queued caption jobs. Blocks until the server exits.
func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	svc := service.NewService()

	if config.Conf.Queue.RedisAddr != "" {
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		// new tasks go through Redis; this process also consumes them
		svc.Dispatcher = q
		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("queue worker exited", zap.Error(err))
			}
		}()
	}

	router.SetupRouter(engine, svc)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("starting HTTP server", zap.String("addr", addr))
	return engine.Run(addr)
}
