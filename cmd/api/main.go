package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-onboarding-api/internal/application/otp"
	"github.com/go-onboarding-api/internal/config"
	"github.com/go-onboarding-api/internal/infrastructure/credstore"
	"github.com/go-onboarding-api/internal/infrastructure/didit"
	"github.com/go-onboarding-api/internal/infrastructure/dynamo"
	"github.com/go-onboarding-api/internal/infrastructure/govregistry"
	jwtinfra "github.com/go-onboarding-api/internal/infrastructure/jwt"
	s3infra "github.com/go-onboarding-api/internal/infrastructure/s3"
	"github.com/go-onboarding-api/internal/infrastructure/smtp"
	"github.com/go-onboarding-api/internal/infrastructure/sns"
	transporthttp "github.com/go-onboarding-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 archive for verification decisions.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Credential store: external auth API when configured, otherwise the
	// in-memory backend for local development.
	var credentialStore credstore.Store
	if cfg.AuthAPIBaseURL != "" {
		credentialStore = credstore.NewClient(cfg.AuthAPIBaseURL, cfg.AuthAPIKey)
	} else {
		log.Println("WARN: no auth API configured, using in-memory credential store")
		credentialStore = credstore.NewMemoryStore()
	}

	deps := &transporthttp.Deps{
		UserRepo:        dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		CredentialStore: credentialStore,
		Verifier:        didit.NewClient(cfg.VerifierBaseURL, cfg.VerifierAPIKey),
		S3Store:         s3Store,
		GovRegistry:     govregistry.NewRegistry(),
		Mailer:          mailer,
		SMSSender:       smsSender,
		JWTProvider:     jwtProvider,
		OTPStore:        otp.NewStore(cfg.OTPTTL),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
