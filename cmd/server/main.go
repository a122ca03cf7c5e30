package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ratemate/ratemate/internal/config"
	"github.com/ratemate/ratemate/internal/database"
	"github.com/ratemate/ratemate/internal/handler"
	"github.com/ratemate/ratemate/internal/mail"
	"github.com/ratemate/ratemate/internal/middleware"
	"github.com/ratemate/ratemate/internal/queue"
	"github.com/ratemate/ratemate/internal/repository"
	"github.com/ratemate/ratemate/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	users := repository.NewUserRepo(db)
	stores := repository.NewStoreRepo(db)
	ratings := repository.NewRatingRepo(db)

	mailer := mail.NewFromEnv()
	dispatcher := mail.NewResetDispatcher(mailer)
	if dispatcher.UseQueue {
		// The worker delivers reset emails published by the handlers.
		go func() {
			if err := queue.StartPasswordResetConsumer(mailer); err != nil {
				log.Printf("reset consumer stopped: %v", err)
			}
		}()
	}

	authH := handler.NewAuthHandler(cfg, users, dispatcher)
	userH := handler.NewUserHandler(users, stores, ratings)
	ownerH := handler.NewOwnerHandler(stores, ratings)
	adminH := handler.NewAdminHandler(cfg, users, stores, ratings)

	// Redis is optional: without it the limiter and cache pass through.
	rdb := config.NewRedisClient()
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, rateLimit)
	router.RegisterUser(e, userH, cfg.JWTSecret, cache)
	router.RegisterOwner(e, ownerH, authH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
