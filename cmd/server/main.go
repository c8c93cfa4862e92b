package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"

	"github.com/Mrxforte/tooler/internal/admin"
	"github.com/Mrxforte/tooler/internal/auth"
	"github.com/Mrxforte/tooler/internal/config"
	"github.com/Mrxforte/tooler/internal/httpapi"
	"github.com/Mrxforte/tooler/internal/logging"
	"github.com/Mrxforte/tooler/internal/mailer"
	"github.com/Mrxforte/tooler/internal/notify"
	"github.com/Mrxforte/tooler/internal/server"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("admin-service")

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GCPProjectID})
	if err != nil {
		panic(fmt.Errorf("firebase app: %w", err))
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		panic(fmt.Errorf("firebase auth client: %w", err))
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		panic(fmt.Errorf("firestore client: %w", err))
	}
	defer firestoreClient.Close()

	directory := admin.NewFirebaseDirectory(authClient)
	store := admin.NewFirestoreStore(firestoreClient)
	adminService := admin.NewService(directory, store)

	dispatcher := mailer.NewSMTPDispatcher(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	notifyService := notify.NewService(directory, dispatcher)

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:      auth.Mode(cfg.Auth.Mode),
		ProjectID: cfg.GCPProjectID,
		JWKSURL:   cfg.Auth.JWKSURL,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := server.NewRouter("admin-service", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier, httpapi.WriteError))

			httpapi.RegisterRoutes(r, adminService, notifyService, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}
