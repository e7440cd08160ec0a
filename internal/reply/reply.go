// Package reply renders upload results as Discord embeds and plain text.
package reply

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/tyemirov/pastebot/pkg/model"
)

const (
	// SuccessColor is the embed accent for successful uploads.
	SuccessColor = 0x57F287
	// MaxEmbedsPerMessage is the Discord limit of embeds in one message.
	MaxEmbedsPerMessage = 10
)

// Embed renders one uploaded attachment.
func Embed(entry model.ReplyEntry) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "File Name", Value: codeSpan(entry.Request.Filename), Inline: true},
		{Name: "File Size", Value: codeSpan(entry.Request.HumanSize), Inline: true},
	}
	if !entry.Response.ExpiresAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Expires",
			Value:  relativeTimestamp(entry.Response.ExpiresAt.Unix()),
			Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       entry.Response.Service,
		URL:         entry.Response.Link,
		Description: entry.Response.Link,
		Color:       SuccessColor,
		Fields:      fields,
	}
	if entry.Request.Author != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Uploaded by " + entry.Request.Author}
	}
	return embed
}

// Embeds renders every entry in order.
func Embeds(entries []model.ReplyEntry) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(entries))
	for _, entry := range entries {
		embeds = append(embeds, Embed(entry))
	}
	return embeds
}

// Batches splits embeds into groups that fit in a single message.
func Batches(embeds []*discordgo.MessageEmbed) [][]*discordgo.MessageEmbed {
	var batches [][]*discordgo.MessageEmbed
	for start := 0; start < len(embeds); start += MaxEmbedsPerMessage {
		end := min(start+MaxEmbedsPerMessage, len(embeds))
		batches = append(batches, embeds[start:end])
	}
	return batches
}

// SkippedNotice lists attachments that were not uploaded. It is empty when
// nothing was skipped.
func SkippedNotice(skipped []string) string {
	if len(skipped) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(skipped))
	for _, filename := range skipped {
		quoted = append(quoted, codeSpan(filename))
	}
	return "Skipped unsupported files: " + strings.Join(quoted, ", ")
}

// Text renders one uploaded attachment as plain lines for terminals.
func Text(entry model.ReplyEntry) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "File Name: %s\n", entry.Request.Filename)
	fmt.Fprintf(&builder, "File Size: %s\n", entry.Request.HumanSize)
	if !entry.Response.ExpiresAt.IsZero() {
		fmt.Fprintf(&builder, "Expires:   %s\n", entry.Response.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&builder, "Link:      %s\n", entry.Response.Link)
	return builder.String()
}

func codeSpan(value string) string {
	return "`" + strings.ReplaceAll(value, "`", "'") + "`"
}

func relativeTimestamp(unixSeconds int64) string {
	return fmt.Sprintf("<t:%d:R>", unixSeconds)
}
