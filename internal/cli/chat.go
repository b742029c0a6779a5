package cli

import (
	"bufio"
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

type ChatCmd struct{}

func NewChatCmd() *ChatCmd {
	return &ChatCmd{}
}

func (c *ChatCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := rootVerbose(cmd)
			if err != nil {
				return err
			}
			rawSQL, err := cmd.Flags().GetBool("raw-sql")
			if err != nil {
				return fmt.Errorf("failed to get raw-sql flag: %w", err)
			}

			log := newLogger(verbose)
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, log, appOptions{lenient: true})
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Задавайте вопросы по видео-аналитике. Для выхода: exit.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "\n> ")
				if !scanner.Scan() {
					break
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					continue
				}
				if isExit(question) {
					break
				}
				if ctx.Err() != nil {
					break
				}

				var response string
				if rawSQL {
					response = app.generator.Answer(ctx, question)
				} else {
					response = app.service.Answer(ctx, question)
				}
				fmt.Fprintln(out, response)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().Bool("raw-sql", false, "let the model write a guarded SELECT instead of using the method catalog")

	return cmd
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "выход":
		return true
	}
	return false
}
