package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/sexpr/internal/handler"
	"github.com/msto63/sexpr/internal/service"
	"github.com/msto63/sexpr/pkg/core/cache"
	grpcpkg "github.com/msto63/sexpr/pkg/core/grpc"
	"github.com/msto63/sexpr/pkg/core/health"
	"github.com/msto63/sexpr/pkg/core/logging"
	"github.com/msto63/sexpr/pkg/core/version"
)

const healthInterval = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the gRPC and HTTP servers",
	Long: `Starts the Converter service.

  gRPC  sexpr.Converter/Convert, sexpr.Converter/Tokenize and grpc.health.v1
  HTTP  POST /api/v1/convert, POST /api/v1/tokenize, GET /healthz
  WS    /ws (messages: convert, tokenize, ping)

Addresses come from the [server] section of the config.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New("serve")

	engine, err := newEngine()
	if err != nil {
		return err
	}

	results := cache.NewResultCache(cache.Config{
		MaxItems: appConfig.Cache.MaxItems,
		TTL:      appConfig.Cache.TTL.Duration,
	})
	defer results.Close()

	registry := health.NewRegistry(appConfig.General.Name, version.App)
	registry.Register(health.EngineCheck(engine))

	svcCfg := service.Config{
		Engine: engine,
		Cache:  results,
		Logger: logging.New("converter"),
	}

	history, err := openHistory(false)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
		svcCfg.History = history
		registry.Register(health.PingCheck("history", history, true))

		if deleted, err := history.Prune(ctx, appConfig.History.Retention.Duration); err != nil {
			logger.Warn("Failed to prune history", "error", err)
		} else if deleted > 0 {
			logger.Info("Pruned history", "deleted", deleted)
		}
	}

	converter, err := service.New(svcCfg)
	if err != nil {
		return err
	}

	grpcCfg := grpcpkg.DefaultServerConfig()
	grpcCfg.Host = appConfig.Server.GRPC.Host
	grpcCfg.Port = appConfig.Server.GRPC.Port
	grpcCfg.EnableReflection = appConfig.Server.GRPC.Reflection
	grpcCfg.Logger = logging.New("grpc-server")

	grpcServer := grpcpkg.NewServer(grpcCfg)
	service.Register(grpcServer.GRPCServer(), service.NewGRPCServer(converter))
	if err := grpcServer.StartAsync(); err != nil {
		return err
	}
	go grpcpkg.WatchHealth(ctx, registry, grpcServer.Health(), healthInterval, service.ServiceName)

	httpServer := handler.NewServer(handler.Config{
		Host:         appConfig.Server.HTTP.Host,
		Port:         appConfig.Server.HTTP.Port,
		ReadTimeout:  appConfig.Server.HTTP.ReadTimeout.Duration,
		WriteTimeout: appConfig.Server.HTTP.WriteTimeout.Duration,
	}, converter, registry)
	httpServer.StartAsync()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sexpr %s\n", version.App)
	fmt.Fprintf(out, "  gRPC:   %s\n", grpcServer.Address())
	fmt.Fprintf(out, "  HTTP:   http://%s\n", httpServer.Address())
	fmt.Fprintf(out, "  Health: http://%s/healthz\n", httpServer.Address())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Fprintln(out, "\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	grpcServer.StopWithTimeout(shutdownCtx)

	stats := results.Stats()
	logger.Info("Stopped", "cache_hits", stats.Hits, "cache_misses", stats.Misses)
	return nil
}
