// ABOUTME: MCP tool definitions and registration for the document Q&A server
// ABOUTME: Exposes ingest, ask, list and delete over the Model Context Protocol
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/citeseek/citeseek/internal/ingest"
	"github.com/citeseek/citeseek/internal/registry"
	"github.com/citeseek/citeseek/internal/retrieval"
)

// RegisterTools registers all tools with the server
func RegisterTools(server *mcpserver.MCPServer, ingestor *ingest.Ingestor, pipeline *retrieval.Pipeline, reg *registry.Registry) *Handlers {
	handlers := &Handlers{
		ingestor: ingestor,
		pipeline: pipeline,
		registry: reg,
	}

	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest a document from a file path so it becomes searchable. Returns the document id and chunk count.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the document file (pdf, docx, odt, txt, md)",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Owner user id; documents are only visible to their owner",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session scope used when no user id applies",
				},
			},
			Required: []string{"path"},
		},
	}, handlers.IngestDocument)

	server.AddTool(mcp.Tool{
		Name:        "ask_documents",
		Description: "Ask a question against the ingested documents. Returns synthesized context with page-level citations.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of source chunks to use (default: 5)",
					"default":     5,
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Restrict retrieval to this user's documents",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Restrict retrieval to this session's documents",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.AskDocuments)

	server.AddTool(mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents with their chunk counts and upload times.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "List only this user's documents",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "List only this session's documents",
				},
			},
		},
	}, handlers.ListDocuments)

	server.AddTool(mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document and all of its indexed chunks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the document to delete",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Owner user id of the document",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Owner session id of the document",
				},
			},
			Required: []string{"document_id"},
		},
	}, handlers.DeleteDocument)

	return handlers
}
