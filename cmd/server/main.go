package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"salon-api/internal/config"
	"salon-api/internal/events"
	gweb "salon-api/internal/grpcweb"
	"salon-api/internal/handler"
	"salon-api/internal/kv"
	"salon-api/internal/middleware"
	"salon-api/internal/salon"
	"salon-api/internal/session"
	"salon-api/internal/store"
	"salon-api/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// persistence medium
	medium, err := kv.Open(ctx, kv.Options{
		Driver:      cfg.StoreDriver,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		SQLitePath:  cfg.SQLitePath,
		LibSQLURL:   cfg.LibSQLURL,
	})
	if err != nil {
		log.Fatalf("store medium: %v", err)
	}
	defer medium.Close()
	log.Printf("using %s medium", cfg.StoreDriver)

	st, err := store.New(ctx, medium)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	pub, err := events.New(cfg.NATSURL)
	if err != nil {
		log.Printf("events disabled: %v", err)
		pub = events.Nop{}
	}
	defer pub.Close()

	sessions := session.NewManager(st, medium, session.Config{
		Secret:      cfg.JWTSecret,
		TTL:         cfg.SessionTTL,
		MaxAttempts: cfg.LoginMaxAttempts,
		Lockout:     cfg.LoginLockout,
	})
	svc := salon.New(st, pub)

	if cfg.AdminEmail != "" {
		if _, err := svc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			log.Fatalf("admin account: %v", err)
		}
	}

	// sweep expired lockouts and session slots
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sessions.Lockout().Cleanup()
				if n, err := medium.Purge(ctx); err != nil {
					log.Printf("purge sessions: %v", err)
				} else if n > 0 {
					log.Printf("purged %d expired session(s)", n)
				}
			}
		}
	}()

	// grpc server
	rl := middleware.NewRateLimiter(ctx, 5, 10)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl, handler.RateLimited()...),
			middleware.Auth(sessions, handler.Rules()),
		),
	)
	handler.Register(srv, handler.New(svc, sessions))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	go func() {
		log.Printf("grpc on :%s", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			log.Printf("grpc: %v", err)
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:" + cfg.GRPCPort)
	if err != nil {
		log.Fatalf("bridge: %v", err)
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr:    ":" + cfg.WebPort,
		Handler: bridge.Handler(),
	}
	go func() {
		log.Printf("grpc-web on :%s", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	// REST
	app := web.NewApp(web.NewHandler(svc, sessions, rl))
	go func() {
		log.Printf("rest on :%s", cfg.HTTPPort)
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Printf("rest: %v", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Println("shutting down")
	srv.GracefulStop()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = app.ShutdownWithContext(shutdownCtx)
}
