package bot

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// interactionSession is the subset of *discordgo.Session used to answer interactions.
type interactionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, response *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// interactionResponder answers through a deferred response plus followups.
// The first followup replaces the deferred placeholder and inherits its
// visibility, so a reply with different visibility deletes the placeholder first.
type interactionResponder struct {
	session     interactionSession
	interaction *discordgo.Interaction

	mutex             sync.Mutex
	deferredEphemeral bool
	placeholderOpen   bool
}

func newInteractionResponder(session interactionSession, interaction *discordgo.Interaction) *interactionResponder {
	return &interactionResponder{session: session, interaction: interaction}
}

func (responder *interactionResponder) Defer(ctx context.Context, ephemeral bool) error {
	responder.mutex.Lock()
	defer responder.mutex.Unlock()

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{},
	}
	if ephemeral {
		response.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	if respondErr := responder.session.InteractionRespond(responder.interaction, response, discordgo.WithContext(ctx)); respondErr != nil {
		return respondErr
	}
	responder.deferredEphemeral = ephemeral
	responder.placeholderOpen = true
	return nil
}

func (responder *interactionResponder) Send(ctx context.Context, reply Reply) error {
	responder.mutex.Lock()
	defer responder.mutex.Unlock()

	if responder.placeholderOpen && reply.Ephemeral != responder.deferredEphemeral {
		if deleteErr := responder.session.InteractionResponseDelete(responder.interaction, discordgo.WithContext(ctx)); deleteErr != nil {
			return deleteErr
		}
	}
	responder.placeholderOpen = false

	params := &discordgo.WebhookParams{
		Content: reply.Content,
		Embeds:  reply.Embeds,
	}
	if reply.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, followupErr := responder.session.FollowupMessageCreate(responder.interaction, true, params, discordgo.WithContext(ctx))
	return followupErr
}
