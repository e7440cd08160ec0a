package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tyemirov/pastebot/pkg/logging"
)

func noopHandler(context.Context, Invocation) error { return nil }

func TestRegistryRejectsDuplicatesAndIncompleteCommands(t *testing.T) {
	t.Helper()

	registry := NewRegistry(logging.Discard(), nil)
	require.NoError(t, registry.Register(Command{Name: "Upload", Handler: noopHandler}))
	require.Error(t, registry.Register(Command{Name: "Upload", Handler: noopHandler}))
	require.Error(t, registry.Register(Command{Name: "", Handler: noopHandler}))
	require.Error(t, registry.Register(Command{Name: "Other"}))

	_, found := registry.Lookup("Upload")
	require.True(t, found)
	_, found = registry.Lookup("Other")
	require.False(t, found)
}

func TestApplicationCommandsDescribeMessageCommands(t *testing.T) {
	t.Helper()

	registry := NewRegistry(nil, nil)
	require.NoError(t, registry.Register(UploadCommands(&stubUploadService{}, nil)...))

	applicationCommands := registry.ApplicationCommands()
	require.Len(t, applicationCommands, 2)
	require.Equal(t, UploadCommandName, applicationCommands[0].Name)
	require.Equal(t, UploadAndDisplayCommandName, applicationCommands[1].Name)
	for _, applicationCommand := range applicationCommands {
		require.Equal(t, discordgo.MessageApplicationCommand, applicationCommand.Type)
		require.NotNil(t, applicationCommand.IntegrationTypes)
		require.ElementsMatch(t, []discordgo.ApplicationIntegrationType{
			discordgo.ApplicationIntegrationGuildInstall,
			discordgo.ApplicationIntegrationUserInstall,
		}, *applicationCommand.IntegrationTypes)
		require.NotNil(t, applicationCommand.Contexts)
		require.ElementsMatch(t, []discordgo.InteractionContextType{
			discordgo.InteractionContextGuild,
			discordgo.InteractionContextBotDM,
			discordgo.InteractionContextPrivateChannel,
		}, *applicationCommand.Contexts)
	}
}

func TestDispatchDefersThenRunsHandler(t *testing.T) {
	t.Helper()

	registry := NewRegistry(logging.Discard(), nil)
	var received Invocation
	require.NoError(t, registry.Register(Command{
		Name:      "Upload",
		Ephemeral: true,
		Handler: func(ctx context.Context, invocation Invocation) error {
			received = invocation
			return invocation.Responder.Send(ctx, Reply{Content: "done", Ephemeral: true})
		},
	}))

	responder := &recordingResponder{}
	invocation := NewInvocation("Ada", nil, responder)
	require.NoError(t, registry.Dispatch(context.Background(), "Upload", invocation))

	require.Equal(t, invocation.ID, received.ID)
	require.NotEmpty(t, received.ID)
	calls := responder.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, responderCall{Method: "Defer", Ephemeral: true}, calls[0])
	require.Equal(t, "done", calls[1].Reply.Content)
}

func TestDispatchReportsHandlerErrorPrivately(t *testing.T) {
	t.Helper()

	registry := prometheus.NewRegistry()
	metrics := MustNewMetrics(registry)
	commandRegistry := NewRegistry(logging.Discard(), metrics)
	handlerErr := errors.New("trace.log: upload to pastes.dev failed with status 500")
	require.NoError(t, commandRegistry.Register(Command{
		Name: "Upload and Display",
		Handler: func(context.Context, Invocation) error {
			return handlerErr
		},
	}))

	responder := &recordingResponder{}
	err := commandRegistry.Dispatch(context.Background(), "Upload and Display", NewInvocation("Ada", nil, responder))
	require.ErrorIs(t, err, handlerErr)

	calls := responder.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, responderCall{Method: "Defer", Ephemeral: false}, calls[0])
	require.True(t, calls[1].Reply.Ephemeral)
	require.Equal(t, handlerErr.Error(), calls[1].Reply.Content)
	require.Empty(t, calls[1].Reply.Embeds)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.invocations.WithLabelValues("Upload and Display", "failure")))
}

func TestDispatchStopsWhenDeferFails(t *testing.T) {
	t.Helper()

	commandRegistry := NewRegistry(logging.Discard(), nil)
	handlerCalled := false
	require.NoError(t, commandRegistry.Register(Command{
		Name: "Upload",
		Handler: func(context.Context, Invocation) error {
			handlerCalled = true
			return nil
		},
	}))

	responder := &recordingResponder{DeferError: errors.New("unknown interaction")}
	err := commandRegistry.Dispatch(context.Background(), "Upload", NewInvocation("Ada", nil, responder))
	require.Error(t, err)
	require.False(t, handlerCalled)
	require.Len(t, responder.Calls(), 1)
}

func TestDispatchUnknownCommand(t *testing.T) {
	t.Helper()

	commandRegistry := NewRegistry(logging.Discard(), nil)
	responder := &recordingResponder{}
	err := commandRegistry.Dispatch(context.Background(), "Missing", NewInvocation("Ada", nil, responder))
	require.ErrorIs(t, err, ErrUnknownCommand)
	require.Empty(t, responder.Calls())
}
