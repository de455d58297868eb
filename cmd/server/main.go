package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"remy/internal/api"
	"remy/internal/cart"
	"remy/internal/config"
	"remy/internal/menu"
	"remy/internal/notify"
	"remy/internal/weather"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	menuStore, err := menu.Load(cfg.Menu.Path)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}

	cartStore := cart.NewStore(cfg.Cart.Path, cfg.Cart.MemoryOnly)
	if cfg.Cart.MemoryOnly {
		log.Println("Cart persistence: in-memory (state will not survive restarts)")
	}

	notifier := notify.NewRelay(cfg.Twilio, nil)
	if !cfg.Twilio.Complete() {
		log.Println("Twilio configuration incomplete, waiter notifications will report a configuration error")
	}

	weatherClient := weather.NewClient(cfg.Restaurant.Latitude, cfg.Restaurant.Longitude, nil)

	server := api.NewServer(menuStore, cartStore, notifier, weatherClient)
	server.AttachDispatcher(fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port))

	go startMetricsServer(cfg.Server.MetricsPort)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
