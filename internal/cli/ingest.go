package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/luckysmouk/vidlytics/internal/ingest"
	"github.com/luckysmouk/vidlytics/internal/retrieval"
	"github.com/luckysmouk/vidlytics/internal/store"
)

type IngestCmd struct{}

func NewIngestCmd() *IngestCmd {
	return &IngestCmd{}
}

func (c *IngestCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Reset the schema and load a dataset export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := rootVerbose(cmd)
			if err != nil {
				return err
			}
			skipDocs, err := cmd.Flags().GetBool("skip-context-docs")
			if err != nil {
				return fmt.Errorf("failed to get skip-context-docs flag: %w", err)
			}

			log := newLogger(verbose)
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := store.Connect(ctx, log, store.ConfigFromEnv())
			if err != nil {
				return err
			}
			defer st.Close()

			var embedder retrieval.Embedder
			if !skipDocs {
				embedder = newEmbedder()
			}

			summary, err := ingest.NewLoader(log, st, embedder).Run(ctx, args[0])
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Videos", "Snapshots", "Context docs"})
			table.Append([]string{
				strconv.FormatInt(summary.Videos, 10),
				strconv.FormatInt(summary.Snapshots, 10),
				strconv.Itoa(summary.Docs),
			})
			table.Render()
			return nil
		},
	}

	cmd.Flags().Bool("skip-context-docs", false, "skip embedding and storing the retrieval context documents")

	return cmd
}
