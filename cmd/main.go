package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"wa-gateway/auth"
	"wa-gateway/contract"
	"wa-gateway/infrastructure/http/server"
	"wa-gateway/infrastructure/qr"
	"wa-gateway/infrastructure/whatsapp"
	"wa-gateway/internal"
	"wa-gateway/observability"
	"wa-gateway/runtime"
	"wa-gateway/runtime/workers"
	"wa-gateway/services"
	"wa-gateway/sink"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, serves HTTP until a signal arrives, then shuts
// down the server before the session so in flight sends can finish.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	port, err := internal.ResolvePort(config.AppName, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.NewLogger(config.LogLevel, config.LogFormat, os.Stdout).With("app", config.AppName)

	// 2. Session engine & Orchestration
	engine := whatsapp.NewEngine(log, whatsapp.Config{
		DSN:            config.SessionDSN(),
		SignalBuffer:   config.BufferSize,
		IncomingBuffer: config.BufferSize,
	})
	session := runtime.NewSession()
	monitoring := observability.NewMonitoringManager(log)
	orchestrator := runtime.NewOrchestrator(
		log, workers.NewSupervisor(log, config.RestartInterval), engine,
		session, runtime.NewRegistry(), qr.NewRenderer(config.QRScale), monitoring,
		runtime.OrchestratorConfig{
			BufferSize:      config.BufferSize,
			SinkTimeout:     config.DeliveryTimeout,
			RestartInterval: config.RestartInterval,
			MetricInterval:  config.MetricInterval,
		},
	)
	sinks := []contract.EventSink{sink.NewLogSink(log)}
	if config.ConsoleQR {
		sinks = append(sinks, sink.NewConsoleSink(os.Stdout))
	}
	orchestrator.RegisterSinks(sinks...)
	orchestrator.OnIncoming(services.NewResponder(log, engine, config.EnableAutoReply))

	dispatcher := services.NewDispatcher(log, engine, session, monitoring, services.DispatcherConfig{
		Policy:             config.Policy(),
		MediaSendTimeout:   config.MediaSendTimeout,
		GroupInviteComment: config.GroupInviteComment,
	})

	// 3. Authentication, disabled when no secret is configured
	issuer := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	if !issuer.Enabled() {
		log.Warn("API_JWT_SECRET is empty, the HTTP API is not protected")
	}
	authenticator := auth.NewAuthenticator(config.APIKeyHash, issuer)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the session
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		orchestrator.Stop(stopCtx)
		log.Info("Program stopped cleanly")
	}()

	// 6. HTTP Server Setup
	handler := server.NewHandler(log, dispatcher, orchestrator.Bridge(), authenticator,
		func() observability.MonitoringStats {
			return monitoring.GetLatest(dispatcher.Status(), orchestrator.Observers())
		},
		server.HandlerConfig{
			MaxUploadBytes:       config.MaxUploadBytes(),
			MultipartMemory:      32 * mebibyte,
			ConnectionBufferSize: config.ConnectionBufferSize,
			WriteTimeout:         config.DeliveryTimeout,
			OriginPatterns:       config.OriginPatterns(),
		},
	)
	address := net.JoinHostPort(config.Host, strconv.Itoa(port))
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.NewRouter(handler, issuer),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Use an error channel to capture ListenAndServe issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server did not shut down cleanly", "error", err)
	}
	return nil
}
