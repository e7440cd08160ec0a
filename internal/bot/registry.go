// Package bot maps Discord message commands to handlers and runs them against
// a gateway session. Handlers never touch discordgo directly: they receive an
// Invocation carrying the author, the target message's attachments and a
// Responder that decides how replies reach the user.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrUnknownCommand is returned by Dispatch for names that were never registered.
var ErrUnknownCommand = errors.New("bot: unknown command")

// Handler runs one command invocation.
type Handler func(ctx context.Context, invocation Invocation) error

// Command binds a message context-menu name to its handler. Ephemeral sets the
// visibility of the deferred acknowledgement.
type Command struct {
	Name      string
	Ephemeral bool
	Handler   Handler
}

// Registry is the explicit command name to handler mapping.
type Registry struct {
	commands map[string]Command
	logger   *slog.Logger
	metrics  *Metrics
}

// NewRegistry creates an empty registry. Metrics may be nil.
func NewRegistry(logger *slog.Logger, metrics *Metrics) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		commands: make(map[string]Command),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register adds commands. Duplicate or incomplete commands are rejected.
func (registry *Registry) Register(commands ...Command) error {
	for _, command := range commands {
		if command.Name == "" || command.Handler == nil {
			return fmt.Errorf("bot: command %q requires a name and handler", command.Name)
		}
		if _, exists := registry.commands[command.Name]; exists {
			return fmt.Errorf("bot: command %q already registered", command.Name)
		}
		registry.commands[command.Name] = command
	}
	return nil
}

// Lookup returns the command registered under name.
func (registry *Registry) Lookup(name string) (Command, bool) {
	command, ok := registry.commands[name]
	return command, ok
}

// Names lists registered command names in sorted order.
func (registry *Registry) Names() []string {
	names := make([]string, 0, len(registry.commands))
	for name := range registry.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplicationCommands describes every registered command as a message command
// installable to guilds and users and usable in guilds, bot DMs and private channels.
func (registry *Registry) ApplicationCommands() []*discordgo.ApplicationCommand {
	integrationTypes := []discordgo.ApplicationIntegrationType{
		discordgo.ApplicationIntegrationGuildInstall,
		discordgo.ApplicationIntegrationUserInstall,
	}
	contexts := []discordgo.InteractionContextType{
		discordgo.InteractionContextGuild,
		discordgo.InteractionContextBotDM,
		discordgo.InteractionContextPrivateChannel,
	}

	names := registry.Names()
	applicationCommands := make([]*discordgo.ApplicationCommand, 0, len(names))
	for _, name := range names {
		applicationCommands = append(applicationCommands, &discordgo.ApplicationCommand{
			Name:             name,
			Type:             discordgo.MessageApplicationCommand,
			IntegrationTypes: &integrationTypes,
			Contexts:         &contexts,
		})
	}
	return applicationCommands
}

// Dispatch acknowledges the interaction, runs the handler and reports any
// handler error back to the invoking user privately.
func (registry *Registry) Dispatch(ctx context.Context, name string, invocation Invocation) error {
	command, ok := registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	logger := registry.logger.With("invocation_id", invocation.ID, "command", name, "author", invocation.Author)
	started := time.Now()

	if deferErr := invocation.Responder.Defer(ctx, command.Ephemeral); deferErr != nil {
		logger.Error("Failed to acknowledge interaction", "error", deferErr)
		registry.metrics.observeCommand(name, started, deferErr)
		return fmt.Errorf("acknowledge %q: %w", name, deferErr)
	}

	handlerErr := command.Handler(ctx, invocation)
	registry.metrics.observeCommand(name, started, handlerErr)
	if handlerErr == nil {
		logger.Info("command_completed", "duration_ms", time.Since(started).Milliseconds())
		return nil
	}

	logger.Error("command_failed", "error", handlerErr)
	if sendErr := invocation.Responder.Send(ctx, Reply{Content: handlerErr.Error(), Ephemeral: true}); sendErr != nil {
		logger.Error("Failed to report command error", "error", sendErr)
	}
	return handlerErr
}
