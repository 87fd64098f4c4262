package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/config"
	gweb "krankmeldung/internal/grpcweb"
	"krankmeldung/internal/handler"
	"krankmeldung/internal/httpapi"
	"krankmeldung/internal/middleware"
	"krankmeldung/internal/rpc"
	"krankmeldung/internal/service"
	"krankmeldung/internal/session"
	"krankmeldung/internal/store"
	"krankmeldung/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTelemetry := telemetry.Setup("krankmeldung", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	log.Println("connected to postgres")

	st := store.New(pool)
	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")

	// signed-out sessions
	var revoked auth.RevocationList
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis url: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		revoked = session.NewRedis(rdb)
		log.Println("session revocations in redis")
	} else {
		revoked = session.NewMemory()
		log.Println("session revocations in memory")
	}

	authn := auth.NewAuthenticator(st, revoked, cfg.Secret, cfg.SessionMaxAge)
	svc := service.New(st)
	metrics := telemetry.NewMetrics()

	grpcLimiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	webLimiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	go grpcLimiter.Run(ctx)
	go webLimiter.Run(ctx)

	// grpc server
	srv := grpc.NewServer(handler.Interceptors(authn, grpcLimiter))
	rpc.RegisterKrankmeldungServiceServer(srv, handler.New(authn, svc, st))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go handler.WatchDB(ctx, hs, st, 10*time.Second)

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

	web := httpapi.New(httpapi.Options{
		Auth:         authn,
		Service:      svc,
		DB:           st,
		Metrics:      metrics,
		Limiter:      webLimiter,
		Bridge:       bridge,
		CookieSecure: cfg.CookieSecure,
	})

	httpSrv := &http.Server{
		Addr:         ":" + cfg.WebPort,
		Handler:      otelhttp.NewHandler(web.Routes(), "krankmeldung"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("web on :%s", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Println("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	hs.Shutdown()
	srv.GracefulStop()
}
