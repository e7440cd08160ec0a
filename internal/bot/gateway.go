package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
)

const defaultInvocationTimeout = 10 * time.Minute

// ReadinessReporter receives gateway connection state.
type ReadinessReporter interface {
	SetReady(ready bool)
}

// GatewayConfig captures the inputs of a Gateway.
type GatewayConfig struct {
	Token   string
	GuildID string
	// InvocationTimeout bounds a single command; interaction tokens expire after 15 minutes.
	InvocationTimeout time.Duration
	Registry          *Registry
	Readiness         ReadinessReporter
	Logger            *slog.Logger
}

// Gateway owns the Discord session, registers the commands once connected and
// routes interactions to the registry.
type Gateway struct {
	session           *discordgo.Session
	registry          *Registry
	readiness         ReadinessReporter
	guildID           string
	invocationTimeout time.Duration
	logger            *slog.Logger

	// commandsRegistered gates readiness on resume.
	commandsRegistered atomic.Bool

	baseMutex   sync.RWMutex
	baseContext context.Context
}

// NewGateway validates cfg and prepares a bot session without connecting.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("bot: token is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("bot: registry is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("bot: logger is required")
	}
	session, sessionErr := discordgo.New("Bot " + token)
	if sessionErr != nil {
		return nil, fmt.Errorf("bot: create session: %w", sessionErr)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions

	invocationTimeout := cfg.InvocationTimeout
	if invocationTimeout <= 0 {
		invocationTimeout = defaultInvocationTimeout
	}

	gateway := &Gateway{
		session:           session,
		registry:          cfg.Registry,
		readiness:         cfg.Readiness,
		guildID:           strings.TrimSpace(cfg.GuildID),
		invocationTimeout: invocationTimeout,
		logger:            cfg.Logger,
		baseContext:       context.Background(),
	}
	session.AddHandler(gateway.onReady)
	session.AddHandler(gateway.onDisconnect)
	session.AddHandler(gateway.onResumed)
	session.AddHandler(gateway.onInteractionCreate)
	return gateway, nil
}

// Run connects to Discord and blocks until ctx is cancelled.
func (gateway *Gateway) Run(ctx context.Context) error {
	gateway.baseMutex.Lock()
	gateway.baseContext = ctx
	gateway.baseMutex.Unlock()

	if openErr := gateway.session.Open(); openErr != nil {
		return fmt.Errorf("bot: open gateway session: %w", openErr)
	}
	gateway.logger.Info("gateway_connected")

	<-ctx.Done()
	gateway.setReady(false)
	if closeErr := gateway.session.Close(); closeErr != nil {
		return fmt.Errorf("bot: close gateway session: %w", closeErr)
	}
	gateway.logger.Info("gateway_closed")
	return nil
}

func (gateway *Gateway) onReady(session *discordgo.Session, ready *discordgo.Ready) {
	applicationID := ""
	if ready.Application != nil {
		applicationID = ready.Application.ID
	}
	if applicationID == "" && ready.User != nil {
		applicationID = ready.User.ID
	}

	registered, registerErr := session.ApplicationCommandBulkOverwrite(applicationID, gateway.guildID, gateway.registry.ApplicationCommands())
	if registerErr != nil {
		gateway.logger.Error("Failed to register commands", "application_id", applicationID, "guild_id", gateway.guildID, "error", registerErr)
		gateway.commandsRegistered.Store(false)
		gateway.setReady(false)
		return
	}
	gateway.logger.Info("commands_registered", "count", len(registered), "guild_id", gateway.guildID, "application_id", applicationID)
	gateway.commandsRegistered.Store(true)
	gateway.setReady(true)
}

func (gateway *Gateway) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	gateway.logger.Warn("gateway_disconnected")
	gateway.setReady(false)
}

func (gateway *Gateway) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	if !gateway.commandsRegistered.Load() {
		gateway.logger.Warn("gateway_resumed", "commands_registered", false)
		return
	}
	gateway.logger.Info("gateway_resumed")
	gateway.setReady(true)
}

func (gateway *Gateway) onInteractionCreate(session *discordgo.Session, event *discordgo.InteractionCreate) {
	if event.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := event.ApplicationCommandData()
	invocation := NewInvocation(authorName(event.Interaction), targetAttachments(data), newInteractionResponder(session, event.Interaction))

	gateway.baseMutex.RLock()
	baseContext := gateway.baseContext
	gateway.baseMutex.RUnlock()
	ctx, cancel := context.WithTimeout(baseContext, gateway.invocationTimeout)
	defer cancel()

	if dispatchErr := gateway.registry.Dispatch(ctx, data.Name, invocation); errors.Is(dispatchErr, ErrUnknownCommand) {
		gateway.logger.Warn("unknown_command", "command", data.Name, "invocation_id", invocation.ID)
	}
}

func (gateway *Gateway) setReady(ready bool) {
	if gateway.readiness != nil {
		gateway.readiness.SetReady(ready)
	}
}
