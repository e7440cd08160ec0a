package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/pastebot/pkg/client"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultHealthcheckTimeout      = 5 * time.Second
	defaultHealthcheckPollInterval = time.Second
)

// ErrHealthEndpointDisabled is returned when no health address is configured.
var ErrHealthEndpointDisabled = errors.New("health endpoint is disabled (HEALTH_GRPC_ADDR)")

func buildHealthcheckCommand(settings *viper.Viper, dependencies Dependencies) *cobra.Command {
	var (
		addressInput string
		serviceInput string
		timeoutInput time.Duration
		waitInput    time.Duration
		pollInput    time.Duration
	)

	command := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check a running bot's gRPC health endpoint; exits non-zero unless serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configuration, logger, err := loadRuntime(settings, dependencies, false)
			if err != nil {
				return err
			}
			if timeoutInput <= 0 {
				timeoutInput = defaultHealthcheckTimeout
			}
			address := addressInput
			if address == "" {
				address = configuration.HealthGRPCAddr
			}
			if address == "" {
				return ErrHealthEndpointDisabled
			}

			healthClient, err := client.NewHealthClient(logger, client.Settings{ServerAddress: address, OperationTimeout: timeoutInput})
			if err != nil {
				return err
			}
			defer healthClient.Close()

			if waitInput > 0 {
				waitCtx, cancelWait := context.WithTimeout(cmd.Context(), waitInput)
				defer cancelWait()
				if waitErr := healthClient.WaitUntilServing(waitCtx, serviceInput, pollInput); waitErr != nil {
					return waitErr
				}
				_, writeErr := fmt.Fprintln(outputOf(dependencies), healthpb.HealthCheckResponse_SERVING.String())
				return writeErr
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutInput)
			defer cancel()
			status, checkErr := healthClient.Check(ctx, serviceInput)
			if checkErr != nil {
				return checkErr
			}
			_, writeErr := fmt.Fprintln(outputOf(dependencies), status.String())
			return writeErr
		},
	}

	command.Flags().StringVar(&addressInput, "address", "", "Health endpoint address (defaults to HEALTH_GRPC_ADDR)")
	command.Flags().StringVar(&serviceInput, "service", "", "Service name to check; empty checks the whole process")
	command.Flags().DurationVar(&timeoutInput, "timeout", defaultHealthcheckTimeout, "Timeout for a single health check")
	command.Flags().DurationVar(&waitInput, "wait", 0, "Keep polling until serving or this duration elapses; 0 checks once")
	command.Flags().DurationVar(&pollInput, "poll-interval", defaultHealthcheckPollInterval, "Delay between checks while waiting")
	return command
}
