package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/itxrex07/x/internal/api"
	"github.com/itxrex07/x/internal/archive"
	"github.com/itxrex07/x/internal/db"
	"github.com/itxrex07/x/internal/events"
	"github.com/itxrex07/x/internal/handlers"
	"github.com/itxrex07/x/internal/middleware"
	"github.com/itxrex07/x/internal/observability"
	"github.com/itxrex07/x/internal/rabbitmq"
	"github.com/itxrex07/x/internal/realtime"
	"github.com/itxrex07/x/internal/store"
	"github.com/itxrex07/x/internal/telemetry"
	"github.com/itxrex07/x/internal/transport"
)

const serviceName = "x-client"

func main() {
	ctx := context.Background()

	if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := telemetry.InitTracing(ctx, serviceName, endpoint)
		if err != nil {
			log.Fatalf("failed to init tracing: %v", err)
		}
		defer shutdown(ctx)
	}

	st := store.New()
	emitter := events.NewEmitter()

	publisher := rabbitmq.NewPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "x.events"))
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	forwarder := telemetry.NewForwarder(publisher, serviceName, getEnv("ENVIRONMENT", "dev"))
	forwarder.BindAll(emitter)

	resolver := api.NewClient(
		getEnv("API_BASE_URL", "https://i.instagram.com/api/v1"),
		os.Getenv("API_TOKEN"),
		st,
	)

	engine := realtime.New(st, resolver, emitter, realtime.WithAudit(forwarder.Audit))

	var arch *archive.Archive
	if dsn := os.Getenv("ARCHIVE_DSN"); dsn != "" {
		database, err := db.Connect(dsn)
		if err != nil {
			log.Fatalf("failed to connect to archive db: %v", err)
		}
		arch = archive.New(database)
		arch.Bind(emitter)
	}

	if feedURL := os.Getenv("FEED_URL"); feedURL != "" {
		feed, err := transport.Dial(ctx, feedURL, os.Getenv("API_TOKEN"), engine)
		if err != nil {
			log.Fatalf("failed to connect to push channel: %v", err)
		}
		defer feed.Close()
		go func() {
			if err := feed.Run(ctx); err != nil {
				log.Printf("feed stopped: %v", err)
			}
		}()
	} else {
		log.Printf("FEED_URL not set, push channel disabled")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(os.Getenv("DEBUG_TOKEN"))
	debugHandler := handlers.NewDebugHandler(engine, st, arch)
	handlers.RegisterDebugRoutes(router, authMiddleware, debugHandler)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
