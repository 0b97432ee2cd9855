// ABOUTME: CLI command to ask questions against ingested documents
// ABOUTME: Prints synthesized context with page-level citations, or raw JSON
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askOwner   ownerFlags
	askLimit   int
	askAsJSON  bool
	askVerbose bool
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against your documents",
		Long: `Ask a question and get an answer context assembled from your
documents, with citations naming the source file, page and section.

Examples:
  citeseek ask "what was Q3 revenue?"
  citeseek ask --limit 10 "main risks named in the filings"
  citeseek ask --json "summarize the methodology"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().IntVar(&askLimit, "limit", 5, "Maximum source chunks to use")
	cmd.Flags().BoolVar(&askAsJSON, "json", false, "Emit the full answer as JSON")
	cmd.Flags().BoolVar(&askVerbose, "citations", false, "Print formatted citation strings (APA)")
	cmd.Flags().StringVar(&askOwner.userID, "user", "", "Restrict to this user's documents")
	cmd.Flags().StringVar(&askOwner.sessionID, "session", "", "Restrict to this session's documents")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askLimit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", askLimit)
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}

	answer, err := a.pipeline.Ask(ctx, args[0], nil, askLimit, askOwner.scope())
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	out := cmd.OutOrStdout()
	if askAsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	if answer.ContextText == "" {
		fmt.Fprintln(out, "No relevant material found.")
		return nil
	}

	fmt.Fprintln(out, answer.ContextText)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Relevance: %.2f\n", answer.RelevanceScore)
	fmt.Fprintln(out, "Sources:")
	for i, c := range answer.Citations {
		fmt.Fprintf(out, "  [%d] %s (%.2f)\n", i+1, c.ExactReference, c.Confidence)
		if askVerbose {
			fmt.Fprintf(out, "      %s\n", c.CitationFormat.APA)
		}
	}
	return nil
}
