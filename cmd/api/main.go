package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/edustride/crm-backend/internal/infra/database"
	"github.com/edustride/crm-backend/internal/infra/http/handlers"
	"github.com/edustride/crm-backend/internal/infra/http/middleware"
	"github.com/edustride/crm-backend/internal/infra/lock"
	"github.com/edustride/crm-backend/internal/infra/mail"
	"github.com/edustride/crm-backend/internal/infra/memory"
	"github.com/edustride/crm-backend/internal/infra/queue"
	"github.com/edustride/crm-backend/internal/usecase"
)

func main() {
	godotenv.Load()

	// 1. Storage: Postgres when configured, in-memory otherwise.
	var db *sql.DB
	var leadRepo usecase.LeadRepositoryInterface
	var historyRepo usecase.HistoryRepositoryInterface
	var auditRepo usecase.AuditRepositoryInterface
	var paymentRepo usecase.PaymentRequestRepositoryInterface
	var demoRepo usecase.DemoRequestRepositoryInterface
	var studentRepo usecase.StudentRepositoryInterface
	var users usecase.UserDirectory

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		var err error
		db, err = database.NewDBConnection(dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()

		leadRepo = database.NewLeadRepository(db)
		historyRepo = database.NewHistoryRepository(db)
		auditRepo = database.NewAuditRepository(db)
		paymentRepo = database.NewPaymentRequestRepository(db)
		demoRepo = database.NewDemoRequestRepository(db)
		studentRepo = database.NewStudentRepository(db)
		users = database.NewUserRepository(db)
	} else {
		slog.Warn("DATABASE_URL not set, falling back to in-memory store")
		leadRepo = memory.NewLeadRepository()
		historyRepo = memory.NewHistoryRepository()
		auditRepo = memory.NewAuditRepository()
		paymentRepo = memory.NewPaymentRequestRepository()
		demoRepo = memory.NewDemoRequestRepository()
		studentRepo = memory.NewStudentRepository()
		users = memory.NewUserDirectory()
	}

	// 2. Event fan-out, optional.
	var producer usecase.EventPublisherInterface
	var rabbitConn *amqp.Connection
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		rabbitMQ, err := queue.NewRabbitMQ(url)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()

		rabbitConn = rabbitMQ.Conn
		producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

		// Enrollment worker: consumes conversion events and sends the
		// welcome mail.
		var notifier queue.EnrollmentNotifier
		if host := os.Getenv("MAIL_HOST"); host != "" {
			port, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
			if port == 0 {
				port = 587
			}
			notifier = mail.NewEmailSender(
				host, port, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
				os.Getenv("MAIL_FROM"),
			)
		}
		worker := queue.NewWorker(rabbitMQ.Ch, notifier)
		go worker.Start(queue.QueueName)
	} else {
		slog.Warn("RABBITMQ_URL not set, lead events disabled")
	}

	// 3. Verification lock: Redis when available, in-process otherwise.
	var locker usecase.Locker = lock.NewMemoryLocker()
	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client, err := lock.NewRedisClient(addr)
		if err != nil {
			slog.Warn("Redis unavailable, using in-process verification lock", "error", err)
		} else {
			redisClient = client
			locker = lock.NewRedisLocker(client)
		}
	}

	// 4. Use cases
	lifecycleUC := usecase.NewLeadLifecycleUseCase(leadRepo, historyRepo, auditRepo, users, producer)
	demoUC := usecase.NewDemoRequestUseCase(leadRepo, demoRepo, historyRepo, auditRepo, producer)
	paymentUC := usecase.NewPaymentRequestUseCase(leadRepo, paymentRepo, historyRepo, auditRepo, producer)
	verifyUC := usecase.NewVerifyPaymentUseCase(paymentRepo, leadRepo, studentRepo, historyRepo, auditRepo, locker, producer)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(lifecycleUC, demoUC)
	paymentHandler := handlers.NewPaymentHandler(paymentUC, verifyUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitConn, redisClient)

	auth := middleware.NewAuthenticator(os.Getenv("JWT_SECRET"))

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/leads", leadHandler.List)
		r.Get("/leads/outcomes", leadHandler.ListOutcomes)
		r.Post("/leads", leadHandler.Create)
		r.Post("/leads/bulk-assign", leadHandler.BulkAssign)
		r.Get("/leads/{id}", leadHandler.Get)
		r.Patch("/leads/{id}", leadHandler.Update)
		r.Delete("/leads/{id}", leadHandler.SoftDelete)
		r.Post("/leads/{id}/assign", leadHandler.AssignCounselor)
		r.Get("/leads/{id}/history", leadHandler.GetHistory)
		r.Post("/leads/{id}/demo-request", leadHandler.CreateDemoRequest)
		r.Post("/leads/{id}/payment-request", paymentHandler.SubmitRequest)
		r.Get("/demo-requests", leadHandler.ListDemoRequests)
		r.Get("/payment-requests", paymentHandler.ListRequests)
		r.Post("/payment-requests/{id}/verify", paymentHandler.VerifyRequest)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	slog.Info("lead pipeline API listening", "port", port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
