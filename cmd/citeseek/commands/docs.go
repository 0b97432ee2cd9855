// ABOUTME: CLI commands to list and delete ingested documents
// ABOUTME: Reads from the charm registry and cascades deletes to the vector store
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var docsOwner ownerFlags

// NewDocsCmd creates the docs command group
func NewDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage ingested documents",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		RunE:  runDocsList,
	}
	list.Flags().StringVar(&docsOwner.userID, "user", "", "List only this user's documents")
	list.Flags().StringVar(&docsOwner.sessionID, "session", "", "List only this session's documents")

	del := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and its indexed chunks",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsDelete,
	}
	del.Flags().StringVar(&docsOwner.userID, "user", "", "Owner user id")
	del.Flags().StringVar(&docsOwner.sessionID, "session", "", "Owner session id")

	cmd.AddCommand(list, del)
	return cmd
}

func runDocsList(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	if a.registry == nil {
		return fmt.Errorf("document registry is not available")
	}

	docs, err := a.registry.List(docsOwner.scope())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No documents ingested.")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tTYPE\tCHUNKS\tUPLOADED")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncate(doc.ID, 12), doc.FileName, doc.FileType, doc.ChunkCount, formatTime(doc.UploadedAt))
	}
	return w.Flush()
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}

	documentID := args[0]
	if err := a.ingestor.DeleteDocument(ctx, documentID, docsOwner.scope()); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", documentID)
	}
	return nil
}
