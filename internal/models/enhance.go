// ABOUTME: Ephemeral models for query enhancement and context synthesis
// ABOUTME: Produced and consumed within a single retrieval call
package models

// HyDEResult holds the hypothetical-document expansion of one query
type HyDEResult struct {
	OriginalQuery        string   `json:"original_query"`
	HypotheticalDocument string   `json:"hypothetical_document"`
	RefinedQueries       []string `json:"refined_queries"`
}

// ChatTurn is one prior exchange used for conversation-aware expansion
type ChatTurn struct {
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
}

// ContextRewriteResult is the synthesized context for one retrieval call
type ContextRewriteResult struct {
	RewrittenContext string  `json:"rewritten_context"`
	RelevanceScore   float64 `json:"relevance_score"`
	CondensedSummary string  `json:"condensed_summary"`
}
