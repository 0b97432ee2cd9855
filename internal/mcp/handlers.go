// ABOUTME: MCP tool handler implementations for the document Q&A server
// ABOUTME: Tool failures return MCP error results, never transport errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/citeseek/citeseek/internal/ingest"
	"github.com/citeseek/citeseek/internal/models"
	"github.com/citeseek/citeseek/internal/registry"
	"github.com/citeseek/citeseek/internal/retrieval"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	ingestor *ingest.Ingestor
	pipeline *retrieval.Pipeline
	registry *registry.Registry
}

// IngestDocument handles the ingest_document tool
func (h *Handlers) IngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}
	owner := ownerFromRequest(request)

	doc, err := h.ingestor.IngestFile(ctx, path, owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"document_id": doc.ID,
		"file_name":   doc.FileName,
		"chunk_count": doc.ChunkCount,
		"uploaded_at": doc.UploadedAt,
	})
}

// AskDocuments handles the ask_documents tool
func (h *Handlers) AskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	maxResults := request.GetInt("max_results", 5)
	owner := ownerFromRequest(request)

	answer, err := h.pipeline.Ask(ctx, query, nil, maxResults, owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}
	return jsonResult(answer)
}

// ListDocuments handles the list_documents tool
func (h *Handlers) ListDocuments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.registry == nil {
		return mcp.NewToolResultError("no document registry configured"), nil
	}
	docs, err := h.registry.List(ownerFromRequest(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"count":     len(docs),
		"documents": docs,
	})
}

// DeleteDocument handles the delete_document tool
func (h *Handlers) DeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a string"), nil
	}
	owner := ownerFromRequest(request)

	if err := h.ingestor.DeleteDocument(ctx, documentID, owner); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deletion failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"deleted":     true,
		"document_id": documentID,
	})
}

func ownerFromRequest(request mcp.CallToolRequest) models.OwnerScope {
	return models.OwnerScope{
		UserID:    request.GetString("user_id", ""),
		SessionID: request.GetString("session_id", ""),
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding response failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
