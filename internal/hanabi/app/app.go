// Package app assembles and runs the Hanabi Matrix bot: configuration,
// storage, the LLM provider, the tool registry, per-user sessions, and the
// Matrix front-end.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bdobrica/Hanabi/common/trace"
	"github.com/bdobrica/Hanabi/internal/hanabi/agent"
	"github.com/bdobrica/Hanabi/internal/hanabi/clock"
	"github.com/bdobrica/Hanabi/internal/hanabi/config"
	"github.com/bdobrica/Hanabi/internal/hanabi/convo"
	"github.com/bdobrica/Hanabi/internal/hanabi/events"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
	"github.com/bdobrica/Hanabi/internal/hanabi/matrix"
	"github.com/bdobrica/Hanabi/internal/hanabi/memory"
	"github.com/bdobrica/Hanabi/internal/hanabi/moderation"
	"github.com/bdobrica/Hanabi/internal/hanabi/observability"
	"github.com/bdobrica/Hanabi/internal/hanabi/session"
	"github.com/bdobrica/Hanabi/internal/hanabi/store"
	"github.com/bdobrica/Hanabi/internal/hanabi/tools"
)

// RefusalMessage is sent when the moderation pre-check flags an inbound
// message. The message itself never reaches the agent.
const RefusalMessage = "I'm sorry, but I can't help with that request."

// App is the assembled Hanabi bot.
type App struct {
	cfg        *config.Config
	store      *store.Store
	moderation *moderation.Client
	sessions   *session.Manager
	matrix     *matrix.Client
}

// New wires the application from configuration.
func New(cfg *config.Config) (*App, error) {
	slog.Info("opening database", "path", cfg.DatabasePath)
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	provider := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})

	registry, err := BuildRegistry(cfg, clock.System{})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	sessions := session.NewManager(SessionFactory(cfg, provider, registry, st))

	var mod *moderation.Client
	if cfg.Moderation.Enabled {
		mod = moderation.New(moderation.Config{
			APIKey:  cfg.ModerationAPIKey(),
			BaseURL: cfg.Moderation.BaseURL,
			Model:   cfg.Moderation.Model,
		}, slog.Default())
		slog.Info("moderation pre-check enabled")
	} else {
		slog.Warn("moderation pre-check disabled")
	}

	a := &App{
		cfg:        cfg,
		store:      st,
		moderation: mod,
		sessions:   sessions,
	}

	if cfg.MatrixEnabled() {
		slog.Info("connecting to Matrix", "homeserver", cfg.Matrix.Homeserver)
		mc, err := matrix.New(&matrix.Config{
			Homeserver:  cfg.Matrix.Homeserver,
			UserID:      cfg.Matrix.UserID,
			AccessToken: cfg.Matrix.AccessToken,
			Rooms:       cfg.Matrix.Rooms,
			Store:       st,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to initialize Matrix client: %w", err)
		}
		a.matrix = mc
	}

	return a, nil
}

// BuildRegistry constructs the fixed tool set: general event search, the two
// Ticketmaster tools, the category browser, and the date tool. Tools whose
// API is not configured are left out, and the model never sees them.
func BuildRegistry(cfg *config.Config, clk clock.Clock) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	registry.Register(tools.NewTodayTool(clk))

	categories, err := tools.NewCategoriesTool()
	if err != nil {
		return nil, err
	}
	registry.Register(categories)

	if cfg.Events.APIKey != "" || cfg.Events.BaseURL != "" {
		search := events.NewClient(events.Config{
			APIKey:  cfg.Events.APIKey,
			BaseURL: cfg.Events.BaseURL,
		}, slog.Default())
		registry.Register(tools.NewEventSearchTool(search))
	} else {
		slog.Warn("event search API not configured; search_events tool disabled")
	}

	if cfg.Ticketmaster.APIKey != "" {
		tm := events.NewTicketmaster(events.TicketmasterConfig{
			APIKey:  cfg.Ticketmaster.APIKey,
			BaseURL: cfg.Ticketmaster.BaseURL,
		})
		registry.Register(tools.NewTicketmasterSearchTool(tm))
		registry.Register(tools.NewEventDetailsTool(tm))
	} else {
		slog.Warn("Ticketmaster API not configured; Ticketmaster tools disabled")
	}

	return registry, nil
}

// SessionFactory returns the factory used by the session manager. Each
// session gets its own memory, summariser, agent, and context window; the
// provider and registry are stateless and shared. When a store is given,
// new sessions are seeded from whatever a previous process persisted for
// the same (room, sender).
func SessionFactory(cfg *config.Config, provider llm.Provider, registry *tools.Registry, st *store.Store) session.Factory {
	return func(room, sender string) (*agent.Agent, *convo.Context) {
		clk := clock.System{}
		mem := memory.NewChatMemory(clk)
		if st != nil {
			restoreMemory(mem, st, session.IDFor(room, sender))
		}
		summariser := memory.NewSummariser(provider, clk, cfg.LLM.SummaryModel)
		ag := agent.New(provider, registry, mem, summariser, cfg.LLM.Model, slog.Default())
		return ag, convo.New(cfg.MaxContextMessages)
	}
}

// restoreMemory loads the persisted summary and transcript for sessionID
// into a fresh memory, so a restarted bot greets returning users with
// remembered context. Load failures are logged and leave the memory empty;
// the session still works, it just starts from scratch.
func restoreMemory(mem *memory.ChatMemory, st *store.Store, sessionID string) {
	ctx := context.Background()

	summary, err := st.Summary(ctx, sessionID)
	if err != nil {
		slog.Warn("failed to load persisted summary", "session", sessionID, "err", err)
	} else if summary != "" {
		mem.SetSummary(summary)
	}

	rows, err := st.Transcript(ctx, sessionID)
	if err != nil {
		slog.Warn("failed to load persisted transcript", "session", sessionID, "err", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	turns := make([]memory.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, memory.Turn{
			User:      fmt.Sprintf("[%s] %s", row.CreatedAt.Format(time.DateOnly), row.User),
			Assistant: row.Assistant,
		})
	}
	mem.RestoreTurns(turns)
	slog.Info("restored session memory", "session", sessionID, "turns", len(turns))
}

// Run starts the bot and blocks until an interrupt signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.matrix == nil {
		return fmt.Errorf("matrix front-end is not configured (set MATRIX_HOMESERVER, MATRIX_USER_ID, MATRIX_ACCESS_TOKEN)")
	}

	slog.Info("starting Matrix sync")
	if err := a.matrix.Start(ctx, a.HandleMessage); err != nil {
		return fmt.Errorf("failed to start Matrix client: %w", err)
	}

	slog.Info("Hanabi is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
}

// Stop shuts the application down.
func (a *App) Stop() {
	if a.matrix != nil {
		slog.Info("stopping Matrix client")
		a.matrix.Stop()
	}
	slog.Info("closing database")
	a.store.Close()
}

// HandleMessage processes one inbound chat message and returns the reply
// text, or "" when nothing should be sent.
func (a *App) HandleMessage(ctx context.Context, roomID, sender, text string) string {
	ctx = trace.WithTraceID(ctx, trace.GenerateID())
	logger := observability.WithTrace(ctx)

	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	switch text {
	case "/summary":
		sess := a.sessions.Peek(roomID, sender)
		if sess == nil {
			return "No conversation yet."
		}
		return "Memory summary:\n" + sess.Summary()
	case "/reset":
		sess := a.sessions.Peek(roomID, sender)
		if sess == nil {
			return "Nothing to reset."
		}
		sess.Reset()
		if err := a.store.DeleteSession(ctx, sess.ID); err != nil {
			logger.Warn("failed to clear persisted session", "session", sess.ID, "err", err)
		}
		return "Conversation and memory cleared."
	}

	if a.moderation != nil {
		if flagged := a.moderation.FlaggedCategories(ctx, text); len(flagged) > 0 {
			categories := flagged[text]
			if len(categories) == 0 {
				logger.Info("message flagged by moderation", "room", roomID, "sender", sender)
			}
			for _, category := range categories {
				logger.Info("message flagged by moderation",
					"room", roomID, "sender", sender,
					"category", category,
					"description", moderation.CategoryDescription(category))
			}
			return RefusalMessage
		}
	}

	sess := a.sessions.Get(roomID, sender)
	logger.Info("processing turn", "room", roomID, "sender", sender, "session", sess.ID)

	reply := sess.Process(ctx, text)
	a.persistTurn(ctx, sess, text, reply, logger)
	return reply
}

// persistTurn writes the exchange and the refreshed summary to the store.
// Persistence failures are logged and otherwise ignored; the in-memory
// session remains authoritative for the running process.
func (a *App) persistTurn(ctx context.Context, sess *session.Session, userText, reply string, logger *slog.Logger) {
	err := a.store.SaveTurn(ctx, store.TranscriptTurn{
		SessionID: sess.ID,
		Room:      sess.Room,
		Sender:    sess.Sender,
		User:      userText,
		Assistant: reply,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Warn("failed to persist transcript turn", "session", sess.ID, "err", err)
	}
	if err := a.store.SaveSummary(ctx, sess.ID, sess.Summary()); err != nil {
		logger.Warn("failed to persist summary", "session", sess.ID, "err", err)
	}
}
