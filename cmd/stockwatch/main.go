package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Filipe-Ambrozio/stockwatch/internal/app"
	"github.com/Filipe-Ambrozio/stockwatch/internal/config"
	"github.com/Filipe-Ambrozio/stockwatch/internal/httpserver"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	authmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/auth"
	"github.com/Filipe-Ambrozio/stockwatch/internal/middleware/csrf"
	loggingmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/logging"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()
	cfg.MustServe()

	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	a, err := app.New(logging.IntoContext(ctx, logger), cfg, logger)
	if err != nil {
		cancel()
		log.Fatalf("startup: %v", err)
	}
	if err := a.Auth.EnsureAdmin(logging.IntoContext(ctx, logger), cfg.AdminDefaultPassword); err != nil {
		cancel()
		log.Fatalf("bootstrap admin: %v", err)
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger, authmw.LogFields))
	e.Use(echomw.Secure())
	if len(cfg.CSRFTrustedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CSRFTrustedOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, csrf.HeaderName},
			ExposeHeaders:    []string{csrf.HeaderName},
		}))
	} else {
		e.Use(echomw.CORS())
	}

	deps := &httpserver.Deps{
		Auth:     &httpserver.AuthHTTP{Svc: a.Auth},
		Products: &httpserver.ProductHTTP{Svc: a.Products},
		Users:    &httpserver.UserHTTP{Svc: a.Users},
		Status:   &httpserver.StatusHTTP{Svc: a.Status},
		Reports:  &httpserver.ReportHTTP{Svc: a.Reports},
		Session:  authmw.NewSessionMiddleware(a.Auth),
		Ready:    a.Ready,
	}
	if cfg.CSRFEnabled {
		deps.CSRF = csrf.New(csrf.Config{
			ExemptPaths:    []string{"/api/v1/auth/login"},
			TrustedOrigins: cfg.CSRFTrustedOrigins,
			Secure:         true,
		})
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("%s listening on %s (store=%s)", cfg.ServiceName, srv.Addr, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := a.Close(); err != nil {
		log.Printf("close: %v", err)
	}

	log.Printf("%s stopped", cfg.ServiceName)
}
