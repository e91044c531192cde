package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/docs"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/encoding/protojson"
)

const (
	serviceName         = "flightdesk"
	healthCheckInterval = 10 * time.Second
)

// Check reports whether a dependency is usable. A failing check turns the
// health status to NOT_SERVING until it recovers.
type Check func(ctx context.Context) error

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
}

// Run starts the gRPC health server and the HTTP API and blocks until ctx is
// canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, router *gin.Engine, checks ...Check) error {
	s, err := newServers(cfg, router)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go watchHealth(ctx, s.health, healthCheckInterval, checks)

	logs.Logger.WithField("http", cfg.HTTP.Address).WithField("grpc", cfg.GRPC.Address).Info("servers started")

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Booking.ShutdownTimeout())
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logs.Logger.Info("servers stopped")
		return nil
	}
}

func newServers(cfg *config.Config, router *gin.Engine) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	gateway, err := healthGateway(healthSrv)
	if err != nil {
		return nil, err
	}
	router.GET("/healthz", gin.WrapH(gateway))

	// The embedded document is served as /swagger/doc.json unless a
	// directory with a regenerated swagger.json is configured.
	swaggerOpts := []func(*httpSwagger.Config){httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName())}
	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/openapi", cfg.HTTP.SwaggerDir)
		swaggerOpts = append(swaggerOpts, httpSwagger.URL("/openapi/swagger.json"))
	}
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(swaggerOpts...)))

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
		health:     healthSrv,
	}, nil
}

// healthGateway exposes the gRPC health check as GET /healthz through the
// grpc-gateway mux.
func healthGateway(checker healthpb.HealthServer) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux()
	err := mux.HandlePath(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		resp, err := checker.Check(r.Context(), &healthpb.HealthCheckRequest{Service: serviceName})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		payload, err := protojson.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(payload)
	})
	if err != nil {
		return nil, fmt.Errorf("register health gateway: %w", err)
	}
	return mux, nil
}

func watchHealth(ctx context.Context, srv *health.Server, interval time.Duration, checks []Check) {
	if len(checks) == 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		updateHealth(ctx, srv, checks)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func updateHealth(ctx context.Context, srv *health.Server, checks []Check) {
	status := healthpb.HealthCheckResponse_SERVING
	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check(checkCtx)
		cancel()
		if err != nil {
			logs.Logger.WithError(err).Warn("health check failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
			break
		}
	}
	srv.SetServingStatus(serviceName, status)
}
