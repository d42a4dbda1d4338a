package main

import (
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskdeck-api/api"
	"taskdeck-api/automation"
	"taskdeck-api/dispatch"
	"taskdeck-api/domain"
	"taskdeck-api/notify"
	"taskdeck-api/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "taskdeck.db"
	}
	base, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var store domain.Store = base
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			log.Fatalf("invalid REDIS_CONNECTION_STRING: %v", err)
		}
		ttl := 5 * time.Minute
		if v := os.Getenv("BOARD_CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid BOARD_CACHE_TTL: %v", err)
			}
			ttl = d
		}
		store = storage.NewCache(base, redis.NewClient(redisOpts), ttl)
	}

	logger := log.New()

	var sink dispatch.NotificationSink = dispatch.LogNotificationSink{Logger: logger}
	var engine dispatch.AutomationEngine = dispatch.LogAutomationEngine{Logger: logger}
	if connStr := os.Getenv("STORAGE_CONNECTION_STRING"); connStr != "" {
		if table := os.Getenv("NOTIFICATIONS_TABLE"); table != "" {
			s, err := notify.NewTableSink(connStr, table)
			if err != nil {
				log.Fatalf("notification sink: %v", err)
			}
			sink = s
		}
		if queue := os.Getenv("AUTOMATION_QUEUE"); queue != "" {
			e, err := automation.NewQueueEngine(connStr, queue)
			if err != nil {
				log.Fatalf("automation engine: %v", err)
			}
			engine = e
		}
	}

	dispatcher := dispatch.New(sink, engine, logger)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Actor-ID"},
	}))

	api.Register(e, api.Deps{
		Mover:    domain.NewMover(store, dispatcher),
		Tasks:    domain.NewTaskService(store, dispatcher),
		Sections: domain.NewSectionService(store, dispatcher),
		Projects: domain.NewProjectService(store),
		Logger:   logger,
	})

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	// Drain queued events before exiting; Fatal would skip a deferred Close.
	err = e.Start(listenAddr)
	dispatcher.Close()
	e.Logger.Fatal(err)
}
