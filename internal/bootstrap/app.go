package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chacha-backend/internal/ai"
	"chacha-backend/internal/app"
	"chacha-backend/internal/cache"
	"chacha-backend/internal/config"
	"chacha-backend/internal/model"
	"chacha-backend/internal/platform/mysql"
	"chacha-backend/internal/platform/rabbitmq"
	"chacha-backend/internal/platform/redis"
	"chacha-backend/internal/rag"
	"chacha-backend/internal/repository"
	transporthttp "chacha-backend/internal/transport/http"
	"chacha-backend/internal/transport/http/handler"
	"chacha-backend/internal/tts"
	"chacha-backend/internal/worker"
)

// App wires configuration, storage, the retrieval engine, the model client,
// and the HTTP router into one runnable unit.
type App struct {
	Config *config.Config
	Router *gin.Engine

	db     *gorm.DB
	redis  *redisv9.Client
	rabbit *amqp.Connection
	worker *worker.InteractionPersistWorker
	ragEng *rag.Engine
	ttsEng *tts.Engine
	llm    *ai.Client
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := mysql.New(ctx, cfg.MySQL)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Chat{}, &model.InteractionLog{}); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.New(ctx, cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}

	ragEng, err := rag.NewEngine(cfg.RAG)
	if err != nil {
		return nil, err
	}
	log.Printf("rag engine ready: %v chunks", ragEng.Status()["chunks"])

	var llm *ai.Client
	if !cfg.LLM.SkipLoad {
		llm = ai.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model)
	} else {
		log.Printf("llm load skipped, all requests take the fallback path")
	}

	ttsEng := tts.NewEngine(cfg.TTS)
	if ttsEng.Enabled() {
		log.Printf("tts engine enabled: %d voices", len(ttsEng.Voices()))
	}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	listCache := cache.NewChatListCache(
		redisClient,
		time.Duration(cfg.Redis.ChatListTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.ChatDirtyTTLSeconds)*time.Second,
	)
	publisher := rabbitmq.NewInteractionPublisher(rabbitConn, cfg.RabbitMQ.InteractionQueue)

	persistWorker := worker.NewInteractionPersistWorker(rabbitConn, interactionRepo, cfg.RabbitMQ.InteractionQueue)
	if err := persistWorker.Start(ctx); err != nil {
		return nil, err
	}

	authService := app.NewAuthService(userRepo, cfg.Auth)
	chatService := app.NewChatService(chatRepo, listCache)

	var llmClient app.LLMClient
	if llm != nil {
		llmClient = llm
	}
	mascotService := app.NewMascotService(cfg.LLM, cfg.RAG, ragEng, llmClient, publisher)

	router := transporthttp.NewRouter(cfg, transporthttp.Handlers{
		Mascot: handler.NewMascotHandler(mascotService, ttsEng),
		TTS:    handler.NewTTSHandler(ttsEng),
		Health: handler.NewHealthHandler(cfg, mascotService, ragEng, ttsEng),
		Auth:   handler.NewAuthHandler(authService),
		Chats:  handler.NewChatsHandler(chatService, authService),
	})

	return &App{
		Config: cfg,
		Router: router,
		db:     db,
		redis:  redisClient,
		rabbit: rabbitConn,
		worker: persistWorker,
		ragEng: ragEng,
		ttsEng: ttsEng,
		llm:    llm,
	}, nil
}

// Close tears down background workers and connections in reverse order.
func (a *App) Close() {
	if a.worker != nil {
		a.worker.Close()
	}
	if a.rabbit != nil {
		_ = a.rabbit.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
