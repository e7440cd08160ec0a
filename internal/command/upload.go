package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/pastebot/internal/reply"
	"github.com/tyemirov/pastebot/internal/service"
	"github.com/tyemirov/pastebot/pkg/attachments"
	"github.com/tyemirov/pastebot/pkg/model"
)

const settingAuthor = "author"

func buildUploadCommand(settings *viper.Viper, dependencies Dependencies) *cobra.Command {
	var jsonOutput bool

	command := &cobra.Command{
		Use:   "upload FILE[ :: content/type]...",
		Short: "Upload local files the way the Upload command does",
		Long: "Upload local files through the same classification and routing as the bot.\n" +
			"Text files go to pastebook.dev, .log files to pastes.dev, anything else is skipped.\n" +
			"Append \" :: content/type\" to a path to override the detected content type.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configuration, logger, err := loadRuntime(settings, dependencies, false)
			if err != nil {
				return err
			}
			attachmentList, err := attachments.Load(args)
			if err != nil {
				return err
			}

			httpClient := &http.Client{Timeout: configuration.HTTPTimeout()}
			uploadService, err := buildUploadService(configuration, attachments.FileFetcher{}, httpClient, logger, nil)
			if err != nil {
				return err
			}

			result, processErr := uploadService.Process(cmd.Context(), attachmentList, resolveAuthor(settings.GetString(settingAuthor)))
			if notice, isNotice := service.NoticeMessage(processErr); isNotice {
				return errors.New(notice)
			}
			if processErr != nil {
				return processErr
			}

			output := outputOf(dependencies)
			if jsonOutput {
				encoder := json.NewEncoder(output)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}
			for entryIndex, entry := range result.Entries {
				if entryIndex > 0 {
					if _, writeErr := fmt.Fprintln(output); writeErr != nil {
						return writeErr
					}
				}
				if _, writeErr := fmt.Fprint(output, reply.Text(entry)); writeErr != nil {
					return writeErr
				}
			}
			if skippedNotice := reply.SkippedNotice(result.Skipped); skippedNotice != "" {
				if _, writeErr := fmt.Fprintf(output, "\n%s\n", skippedNotice); writeErr != nil {
					return writeErr
				}
			}
			return nil
		},
	}

	command.Flags().String(settingAuthor, "", "Author name shown in paste titles (PASTEBOT_AUTHOR, defaults to $USER)")
	command.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	_ = settings.BindPFlag(settingAuthor, command.Flags().Lookup(settingAuthor))
	return command
}

// resolveAuthor falls back to the login name, then to model.DefaultAuthor.
func resolveAuthor(configured string) string {
	if author := strings.TrimSpace(configured); author != "" {
		return author
	}
	if login := strings.TrimSpace(os.Getenv("USER")); login != "" {
		return login
	}
	return model.DefaultAuthor
}
