package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/tyemirov/pastebot/pkg/model"
)

// Reply is one message sent back to the invoking user.
type Reply struct {
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Ephemeral bool
}

// Responder is the reply sink of a single interaction. Defer must be called
// once before any Send.
type Responder interface {
	Defer(ctx context.Context, ephemeral bool) error
	Send(ctx context.Context, reply Reply) error
}

// Invocation is the request-scoped context handed to command handlers.
type Invocation struct {
	ID          string
	Author      string
	Attachments []model.Attachment
	Responder   Responder
}

// NewInvocation stamps a fresh invocation id.
func NewInvocation(author string, attachments []model.Attachment, responder Responder) Invocation {
	return Invocation{
		ID:          uuid.NewString(),
		Author:      author,
		Attachments: attachments,
		Responder:   responder,
	}
}

// authorName prefers the guild nickname, then the global display name, then the username.
func authorName(interaction *discordgo.Interaction) string {
	var user *discordgo.User
	if interaction.Member != nil {
		if interaction.Member.Nick != "" {
			return interaction.Member.Nick
		}
		user = interaction.Member.User
	}
	if user == nil {
		user = interaction.User
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// targetAttachments returns the attachments of the message the command was invoked on.
func targetAttachments(data discordgo.ApplicationCommandInteractionData) []model.Attachment {
	if data.Resolved == nil || data.Resolved.Messages == nil {
		return nil
	}
	message, ok := data.Resolved.Messages[data.TargetID]
	if !ok || message == nil {
		return nil
	}
	attachmentList := make([]model.Attachment, 0, len(message.Attachments))
	for _, attachment := range message.Attachments {
		if attachment == nil {
			continue
		}
		attachmentList = append(attachmentList, model.Attachment{
			URL:         attachment.URL,
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			Size:        attachment.Size,
		})
	}
	return attachmentList
}
