package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authcore/authcore/internal/httpapi"
	"github.com/authcore/authcore/pkg/config"
	"github.com/authcore/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()
	logx.SetLevel(cfg.Log.Level)

	logx.Info("starting authcore")

	ctx := context.Background()
	container, err := NewContainer(ctx, cfg)
	if err != nil {
		logx.Fatalf("failed to initialize container: %v", err)
	}
	defer container.Close(ctx)

	app := fiber.New(fiber.Config{
		AppName:               "authcore",
		DisableStartupMessage: true,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE",
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${reqHeader:X-Request-ID}\n",
	}))

	httpapi.Register(app, httpapi.Deps{
		Resolver:          container.Resolver,
		Users:             container.Users,
		Roles:             container.Roles,
		OAuthApplications: container.OAuthApplications,
		OAuthTokens:       container.OAuthTokens,
		Passkeys:          container.Passkeys,
		Registrations:     container.Registrations,
		Settings:          container.Settings,
		AuditLogs:         container.AuditLogs,
		Audit:             container.Audit,
		Hasher:            container.Hasher,
		AuthFlow:          container.AuthFlow,
		MFA:               container.MFA,
		OAuth:             container.OAuth,
		Passkey:           container.Passkey,
	})

	go func() {
		logx.Infof("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logx.Fatalf("server error: %v", err)
		}
	}()

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("received signal %v, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logx.Errorf("server forced to shutdown: %v", err)
	}

	logx.Info("server exited")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
