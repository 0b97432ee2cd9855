// ABOUTME: CLI command to ingest documents into the search index
// ABOUTME: Accepts single files or directories, with owner scoping flags
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestOwner ownerFlags

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest documents into the index",
		Long: `Ingest one or more documents so they become searchable.

Each path may be a file (pdf, docx, odt, txt, md) or a directory,
which is walked recursively. Documents ingested with --user or
--session are only visible to that owner.

Examples:
  citeseek ingest report.pdf
  citeseek ingest --user alice ./papers/
  citeseek ingest notes.md slides.odt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestOwner.userID, "user", "", "Owner user id")
	cmd.Flags().StringVar(&ingestOwner.sessionID, "session", "", "Owner session id")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	owner := ingestOwner.scope()

	total := 0
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			docs, err := a.ingestor.IngestDir(ctx, path, owner)
			if err != nil {
				return fmt.Errorf("ingesting directory %s: %w", path, err)
			}
			total += len(docs)
			if !quiet {
				for _, doc := range docs {
					fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s (%d chunks) -> %s\n", doc.FileName, doc.ChunkCount, doc.ID)
				}
			}
			continue
		}

		doc, err := a.ingestor.IngestFile(ctx, path, owner)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		total++
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s (%d chunks) -> %s\n", doc.FileName, doc.ChunkCount, doc.ID)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%d document(s) ingested\n", total)
	}
	return nil
}
