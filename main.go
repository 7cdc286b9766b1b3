package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gopower/adapters/api"
	"gopower/adapters/solver"
	"gopower/app"
	"gopower/internal/config"
)

func main() {
	// Load .env file if present (ignore error in production)
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dispatcher := app.NewDispatcher(solver.AssuranceDefaults{
		Draws: appConfig.Solver.DefaultDraws,
		Seed:  appConfig.Solver.BaseSeed,
	})
	apiApp := api.NewApp(dispatcher)

	server := &http.Server{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      apiApp.Router(),
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
	}

	go func() {
		log.Printf("🚀 Power solver listening on port %s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
