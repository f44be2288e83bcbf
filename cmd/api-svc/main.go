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

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
	"agromarket/internal/realtime"
	"agromarket/internal/wire"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Initializing application...")
	app, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := dbmysql.AutoMigrate(app.DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	go app.Hub.Run()

	brokerCtx, stopBroker := context.WithCancel(context.Background())
	go app.Hub.SubscribeBroker(brokerCtx)

	router := mux.NewRouter()
	app.UserHandler.RegisterPublicRoutes(router)

	protected := router.NewRoute().Subrouter()
	protected.Use(common.AuthMiddleware)
	app.UserHandler.RegisterRoutes(protected)
	app.ChatHandler.RegisterRoutes(protected)
	app.AttachmentHandler.RegisterRoutes(protected)
	app.NotificationHandler.RegisterRoutes(protected)
	app.FavoriteHandler.RegisterRoutes(protected)
	app.ProductHandler.RegisterRoutes(protected)
	protected.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		realtime.ServeWS(app.Hub, w, r)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", app.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	stopBroker()
	app.NotificationService.Shutdown()

	if err := app.Mongo.Close(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
	if err := app.Redis.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	log.Println("Server stopped")
}
