package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/carbon"
	"github.com/truekea/truekea-api/internal/config"
	"github.com/truekea/truekea-api/internal/database"
	"github.com/truekea/truekea-api/internal/handler"
	"github.com/truekea/truekea-api/internal/queue"
	"github.com/truekea/truekea-api/internal/repository"
	"github.com/truekea/truekea-api/internal/router"
	"github.com/truekea/truekea-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	roles := repository.NewRoleRepo(db)
	cats := repository.NewCategoryRepo(db)
	items := repository.NewItemRepo(db)
	prefs := repository.NewPreferenceRepo(db)
	swaps := repository.NewSwapRepo(db)
	messages := repository.NewMessageRepo(db)
	ratings := repository.NewRatingRepo(db)

	// The factor table is loaded once at startup and swapped atomically on
	// category writes; a DB without categories is a deployment error.
	agg := carbon.NewAggregator(cats)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := agg.Reload(ctx); err != nil {
		cancel()
		log.Fatalf("carbon factors: %v", err)
	}
	cancel()

	flow := service.NewAuthFlow(cfg, users, cats, items, prefs, tokens, agg)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, flow, users),
		Users:       handler.NewUserHandler(users),
		Roles:       handler.NewRoleHandler(roles),
		Categories:  handler.NewCategoryHandler(cats, agg),
		Items:       handler.NewItemHandler(items, cats),
		Swaps:       handler.NewSwapHandler(swaps, items),
		Messages:    handler.NewMessageHandler(messages, swaps),
		Ratings:     handler.NewRatingHandler(ratings, swaps),
		Preferences: handler.NewPreferenceHandler(prefs, cats),
		Carbon:      handler.NewCarbonHandler(agg),
	}

	// nil when Redis is unreachable; cache and rate limiting turn off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache and rate limiting disabled")
	}

	// Consumes swap.completed events and appends them to logs/swaps.log.
	go queue.StartSwapConsumer()

	e := echo.New()
	router.RegisterRoutes(e, cfg, h, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
