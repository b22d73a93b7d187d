package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/option"

	"github.com/lifehubapp/lifehub/internal/config"
	"github.com/lifehubapp/lifehub/internal/domain/calendar"
	"github.com/lifehubapp/lifehub/internal/domain/goal"
	"github.com/lifehubapp/lifehub/internal/domain/habit"
	"github.com/lifehubapp/lifehub/internal/domain/pomodoro"
	"github.com/lifehubapp/lifehub/internal/domain/project"
	"github.com/lifehubapp/lifehub/internal/domain/wallet"
	"github.com/lifehubapp/lifehub/internal/gateway"
	"github.com/lifehubapp/lifehub/internal/identity"
	"github.com/lifehubapp/lifehub/internal/local"
	"github.com/lifehubapp/lifehub/internal/mcp"
	"github.com/lifehubapp/lifehub/internal/remote"
)

// migratableCollections lists every collection whose records follow the
// user through the anonymous-to-authenticated transition.
var migratableCollections = []string{
	project.Collection,
	"projects_counters",
	pomodoro.SessionsCollection,
	pomodoro.SettingsCollection,
	pomodoro.StateCollection,
	habit.Collection,
	wallet.Collection,
	goal.Collection,
	calendar.Collection,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	store, err := local.Open(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open fallback store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	var remoteStore remote.Store
	var verifier identity.Verifier = offlineVerifier{}
	if cfg.Firebase.ProjectID != "" {
		app, err := newFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			logger.Error("failed to initialize firebase", "error", err)
			os.Exit(1)
		}
		fsClient, err := app.Firestore(ctx)
		if err != nil {
			logger.Error("failed to create firestore client", "error", err)
			os.Exit(1)
		}
		defer fsClient.Close()
		authClient, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to create auth client", "error", err)
			os.Exit(1)
		}
		remoteStore = remote.NewFirestore(fsClient)
		verifier = identity.NewFirebaseVerifier(authClient)
		logger.Info("cloud backend configured", "project", cfg.Firebase.ProjectID)
	} else {
		logger.Info("no cloud backend configured, running offline")
	}

	var idc *identity.Context
	gw := gateway.New(remoteStore, store, gateway.OwnerFunc(func() string {
		return idc.OwnerID()
	}), logger)
	idc = identity.New(verifier, gw, migratableCollections, logger)

	counters := gateway.NewCounters(gw)
	projectSvc := project.NewService(gw, counters, logger)
	pomodoroSvc := pomodoro.NewService(gw, idc, logger)
	habitSvc := habit.NewService(gw, logger)
	walletSvc := wallet.NewService(gw, logger)
	goalSvc := goal.NewService(gw, logger)
	calendarSvc := calendar.NewService(gw, logger)

	idc.OnChange(projectSvc.Reload)
	idc.OnChange(pomodoroSvc.Reload)
	idc.OnChange(habitSvc.Reload)
	idc.OnChange(walletSvc.Reload)
	idc.OnChange(goalSvc.Reload)
	idc.OnChange(calendarSvc.Reload)

	if err := idc.Bootstrap(ctx); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Auth:     idc,
			Projects: projectSvc,
			Pomodoro: pomodoroSvc,
			Habits:   habitSvc,
			Wallet:   walletSvc,
			Goals:    goalSvc,
			Calendar: calendarSvc,
		},
		Logger: logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
	} else {
		runHTTPMode(logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}
}

func newFirebaseApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	fbCfg := &firebase.Config{ProjectID: cfg.ProjectID}
	if cfg.CredentialsFile != "" {
		return firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return firebase.NewApp(ctx, fbCfg)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	transport := &sdkmcp.StdioTransport{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	if err := mcpServer.Run(ctx, transport); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// offlineVerifier rejects every sign-in attempt. Used when no cloud
// backend is configured.
type offlineVerifier struct{}

func (offlineVerifier) Verify(context.Context, string) (string, error) {
	return "", errors.New("sign-in requires a configured cloud backend")
}
