package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Services contains all domain services needed by MCP.
type Services struct {
	Auth     AuthService
	Projects ProjectService
	Pomodoro PomodoroService
	Habits   HabitService
	Wallet   WalletService
	Goals    GoalService
	Calendar CalendarService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

const serverInstructions = `LifeHub is a personal productivity dashboard. All data is scoped to the
current identity: anonymous until auth_sign_in, after which anonymous
records are migrated to the signed-in user. Writes always land in the
local fallback store, so tools keep working while the cloud backend is
unreachable.

Start with list_projects or auth_status to orient. Task ids are numeric
and project-local; project, habit, goal, transaction and event ids are
strings. Completing a task via toggle_task completes its whole subtree.`

// NewServer creates and configures an MCP server with all tools.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "lifehub",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}
