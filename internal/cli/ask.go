package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

type AskCmd struct{}

func NewAskCmd() *AskCmd {
	return &AskCmd{}
}

func (c *AskCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := rootVerbose(cmd)
			if err != nil {
				return err
			}
			rawSQL, err := cmd.Flags().GetBool("raw-sql")
			if err != nil {
				return fmt.Errorf("failed to get raw-sql flag: %w", err)
			}
			lenient, err := cmd.Flags().GetBool("lenient")
			if err != nil {
				return fmt.Errorf("failed to get lenient flag: %w", err)
			}

			log := newLogger(verbose)
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, log, appOptions{lenient: lenient})
			if err != nil {
				return err
			}
			defer app.Close()

			question := strings.Join(args, " ")
			var response string
			if rawSQL {
				response = app.generator.Answer(ctx, question)
			} else {
				response = app.service.Answer(ctx, question)
			}

			fmt.Fprintln(cmd.OutOrStdout(), response)
			return nil
		},
	}

	cmd.Flags().Bool("raw-sql", false, "let the model write a guarded SELECT instead of using the method catalog")
	cmd.Flags().Bool("lenient", false, "salvage a bare number from malformed model responses")

	return cmd
}
