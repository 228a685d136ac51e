package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// RabbitMQ is optional: without it the pipeline still runs, it just
	// skips the reminder fan-out.
	var rabbitMQ *queue.RabbitMQ
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		rabbitMQ, err = queue.NewRabbitMQ(
			os.Getenv("RABBITMQ_USER"),
			os.Getenv("RABBITMQ_PASS"),
			host,
			envOr("RABBITMQ_PORT", "5672"),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()
	}

	// Repositories
	leadRepo := database.NewLeadRepository(db)
	customerRepo := database.NewCustomerRepository(db)
	followUpRepo := database.NewFollowUpRepository(db)
	notificationRepo := database.NewNotificationRepository(db)

	// Use cases
	convertLeadUC := usecase.NewConvertLeadUseCase(leadRepo, customerRepo)

	var events usecase.EventPublisher
	if rabbitMQ != nil {
		events = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	}

	pipeline := usecase.NewProcessDueFollowUpsUseCase(followUpRepo, notificationRepo, events)
	if v := os.Getenv("FOLLOWUP_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pipeline.BatchSize = n
		}
	}

	// Scheduler
	tickInterval := worker.DefaultTickInterval
	if v := os.Getenv("FOLLOWUP_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			tickInterval = d
		}
	}
	scheduler := worker.NewFollowUpScheduler(pipeline, tickInterval)
	scheduler.Start()
	defer scheduler.Stop()

	// Reminder email worker
	if rabbitMQ != nil && os.Getenv("MAIL_HOST") != "" {
		mailPort, _ := strconv.Atoi(envOr("MAIL_PORT", "587"))
		sender := mail.NewEmailSender(
			os.Getenv("MAIL_HOST"), mailPort,
			os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
			envOr("MAIL_FROM", "no-reply@ligue-crm.local"),
		)
		reminderWorker := queue.NewWorker(rabbitMQ.Ch, sender, os.Getenv("REMINDER_INBOX"))
		go reminderWorker.Start(queue.QueueName)
	}

	// Handlers
	leadHandler := handlers.NewLeadHandler(leadRepo, convertLeadUC, followUpRepo)
	customerHandler := handlers.NewCustomerHandler(customerRepo)
	followUpHandler := handlers.NewFollowUpHandler(followUpRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	var rabbitConn *amqp091.Connection
	if rabbitMQ != nil {
		rabbitConn = rabbitMQ.Conn
	}
	healthHandler := handlers.NewHealthHandler(db, rabbitConn)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/leads", leadHandler.Routes)
	r.Route("/customers", customerHandler.Routes)
	r.Route("/follow-ups", followUpHandler.Routes)
	r.Route("/notifications", notificationHandler.Routes)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	server := &http.Server{Addr: port, Handler: r}

	go func() {
		log.Printf("CRM server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	scheduler.Stop()
	server.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
