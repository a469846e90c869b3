package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// Tool names.
const (
	toolListDocuments = "list_documents"
	toolUpload        = "upload_documents"
	toolAsk           = "ask_question"
	toolDeleteAll     = "delete_all_documents"
)

// ListDocumentsInput is the input schema for list_documents.
type ListDocumentsInput struct{}

// DocumentOutput describes one indexed document.
type DocumentOutput struct {
	ID         string `json:"id,omitempty"`
	Filename   string `json:"filename"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// ListDocumentsOutput is the output schema for list_documents.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// UploadInput is the input schema for upload_documents.
type UploadInput struct {
	Paths []string `json:"paths" jsonschema:"local PDF files, directories or glob patterns (** allowed) to upload"`
}

// UploadOutput is the output schema for upload_documents.
type UploadOutput struct {
	Message   string           `json:"message"`
	Documents []DocumentOutput `json:"documents"`
}

// AskInput is the input schema for ask_question.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the uploaded documents"`
}

// CitationOutput is a passage supporting an answer.
type CitationOutput struct {
	Page      int     `json:"page"`
	ChunkID   string  `json:"chunk_id,omitempty"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance_percent"`
}

// AskOutput is the output schema for ask_question.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Citations []CitationOutput `json:"citations"`
	Grounding string           `json:"grounding,omitempty"`
}

// DeleteAllInput is the input schema for delete_all_documents.
type DeleteAllInput struct {
	Confirm bool `json:"confirm" jsonschema:"must be true; deletes every document and clears the conversation"`
}

// DeleteAllOutput is the output schema for delete_all_documents.
type DeleteAllOutput struct {
	Deleted bool `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
// Upload and delete tools are only offered when their ports are set.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolListDocuments,
		Description: "List the documents held by the indexing service",
	}, s.handleListDocuments)
	s.tools = append(s.tools, toolListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolAsk,
		Description: "Ask a question answered from the uploaded documents, with page citations",
	}, s.handleAsk)
	s.tools = append(s.tools, toolAsk)

	if s.ports.Uploads != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        toolUpload,
			Description: "Upload local PDF files to the indexing service",
		}, s.handleUpload)
		s.tools = append(s.tools, toolUpload)
	}

	if s.ports.Admin != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        toolDeleteAll,
			Description: "Delete every document from the indexing service. Irreversible.",
		}, s.handleDeleteAll)
		s.tools = append(s.tools, toolDeleteAll)
	}
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if err := s.ports.Roster.Refresh(ctx); err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	docs := s.ports.Roster.Documents()
	return nil, ListDocumentsOutput{
		Documents: documentOutputs(docs),
		Count:     len(docs),
	}, nil
}

func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	if s.ports.ExpandFiles == nil {
		return nil, UploadOutput{}, errUploadsDisabled
	}
	if len(input.Paths) == 0 {
		return nil, UploadOutput{}, domain.ErrEmptySelection
	}

	files, err := s.ports.ExpandFiles(input.Paths)
	if err != nil {
		return nil, UploadOutput{}, err
	}
	if len(files) == 0 {
		return nil, UploadOutput{}, domain.ErrEmptySelection
	}

	s.ports.Uploads.Select(files...)
	result, err := s.ports.Uploads.StartUpload(ctx)
	if err != nil {
		for _, f := range files {
			s.ports.Uploads.Deselect(f.Name)
		}
		return nil, UploadOutput{}, err
	}

	return nil, UploadOutput{
		Message:   result.Summary(),
		Documents: documentOutputs(result.Documents),
	}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Roster.IsEmpty() {
		// The roster may simply not be loaded yet in a fresh server.
		if err := s.ports.Roster.Refresh(ctx); err != nil {
			return nil, AskOutput{}, err
		}
	}

	reply, err := s.ports.Chat.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:    reply.Content,
		Citations: make([]CitationOutput, len(reply.Citations)),
		Grounding: reply.GroundingLabel(),
	}
	for i, c := range reply.Citations {
		out.Citations[i] = CitationOutput{
			Page:      c.PageNumber,
			ChunkID:   c.ChunkID,
			Snippet:   c.Snippet,
			Relevance: c.RelevancePercent(),
		}
	}
	return nil, out, nil
}

func (s *Server) handleDeleteAll(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteAllInput,
) (*mcp.CallToolResult, DeleteAllOutput, error) {
	if err := s.ports.Admin.DeleteAll(ctx, input.Confirm); err != nil {
		return nil, DeleteAllOutput{}, err
	}
	return nil, DeleteAllOutput{Deleted: true}, nil
}

func documentOutputs(docs []domain.Document) []DocumentOutput {
	out := make([]DocumentOutput, len(docs))
	for i, d := range docs {
		out[i] = DocumentOutput{
			ID:       d.ID,
			Filename: d.Filename,
			Pages:    d.NumPages,
			Chunks:   d.ChunksCount,
			Status:   d.Status.String(),
		}
		if !d.UploadDate.IsZero() {
			out[i].UploadedAt = d.UploadDate.Format(time.RFC3339)
		}
	}
	return out
}
