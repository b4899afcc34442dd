package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/studyaivault/backend/config"
	"github.com/studyaivault/backend/handlers"
	"github.com/studyaivault/backend/middleware"
	"github.com/studyaivault/backend/service"
	"github.com/studyaivault/backend/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Println("warning: ensure indexes:", err)
	}

	var s3Service *service.S3Service
	if cfg.S3Bucket != "" {
		s3Service, err = service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal("s3:", err)
		}
	} else {
		log.Println("warning: AWS_S3_BUCKET not set; uploads and downloads will fail")
	}

	var mailer *service.Mailer
	if cfg.SMTPHost != "" {
		mailer = service.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.PublicBaseURL)
	} else {
		log.Println("SMTP_HOST not set; verification emails disabled")
	}

	authHandler := &handlers.AuthHandler{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		JWTExpiry: cfg.JWTExpiry,
		Mailer:    mailer,
	}
	profileHandler := &handlers.ProfileHandler{DB: db}
	uploadHandler := &handlers.UploadHandler{
		DB:       db,
		S3:       s3Service,
		MaxBytes: cfg.MaxUploadMB * 1024 * 1024,
	}
	pdfsHandler := &handlers.PdfsHandler{DB: db, S3: s3Service}

	requireAuth := middleware.Auth(cfg.JWTSecret, db.UserByID)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret, db.UserByID)

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to study ai vault."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/signin", authHandler.Signin)
			r.Get("/verify", authHandler.VerifyEmail)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", authHandler.Profile)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/{id}", profileHandler.GetUser)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Put("/reading-stats", profileHandler.UpdateReadingStats)
		})

		r.Route("/pdfs", func(r chi.Router) {
			// Public surface
			r.Get("/", pdfsHandler.List)
			r.Get("/genres/list", pdfsHandler.Genres)
			r.Get("/statistics/overview", pdfsHandler.Statistics)
			r.Get("/user/{userId}", pdfsHandler.UserPdfs)
			r.Post("/{id}/view", pdfsHandler.View)
			r.Get("/{id}/download", pdfsHandler.Download)
			r.With(optionalAuth).Get("/{id}", pdfsHandler.Get)

			// Authenticated surface
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/upload", uploadHandler.Upload)
				r.Get("/my-pdfs", pdfsHandler.MyPdfs)
				r.Post("/{id}/like", pdfsHandler.Like)
				r.Post("/{id}/rating", pdfsHandler.Rate)
				r.Post("/{id}/comments", pdfsHandler.Comment)
				r.Patch("/{id}/approve", pdfsHandler.Approve)
				r.Delete("/{id}", pdfsHandler.Delete)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
