// Package attachments classifies chat attachments into paste content kinds,
// downloads their bytes, formats sizes for display and loads local files as
// attachments so the CLI can drive the same upload pipeline as the bot.
package attachments
