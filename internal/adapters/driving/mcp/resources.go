package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for policydesk resources.
	uriScheme = "policydesk://"

	documentsURI  = uriScheme + "documents"
	transcriptURI = uriScheme + "transcript"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "Documents last reported by the indexing service",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentKey}",
		Name:        "document",
		Description: "A single document, addressed by ID or filename",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	s.server.AddResource(&mcp.Resource{
		URI:         transcriptURI,
		Name:        "transcript",
		Description: "The conversation so far, with citations",
		MIMEType:    "application/json",
	}, s.handleTranscriptResource)
}

// handleDocumentsResource returns the roster, loading it on first use.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Roster.LastRefreshed().IsZero() {
		if err := s.ports.Roster.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
	}
	return jsonResource(req.Params.URI, documentOutputs(s.ports.Roster.Documents()))
}

// handleDocumentResource returns one document from the roster.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key := extractDocumentKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	for _, d := range s.ports.Roster.Documents() {
		if d.Key() == key || d.Filename == key {
			return jsonResource(req.Params.URI, documentOutputs([]domain.Document{d})[0])
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// handleTranscriptResource returns the chat transcript.
func (s *Server) handleTranscriptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type messageInfo struct {
		Role      string           `json:"role"`
		Content   string           `json:"content"`
		Citations []CitationOutput `json:"citations,omitempty"`
		Grounding string           `json:"grounding,omitempty"`
		Time      string           `json:"time"`
	}

	transcript := s.ports.Chat.Transcript()
	infos := make([]messageInfo, len(transcript))
	for i, m := range transcript {
		infos[i] = messageInfo{
			Role:      string(m.Role),
			Content:   m.Content,
			Grounding: m.GroundingLabel(),
			Time:      m.Timestamp.Format(time.RFC3339),
		}
		for _, c := range m.Citations {
			infos[i].Citations = append(infos[i].Citations, CitationOutput{
				Page:      c.PageNumber,
				ChunkID:   c.ChunkID,
				Snippet:   c.Snippet,
				Relevance: c.RelevancePercent(),
			})
		}
	}

	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentKey extracts the key from a URI like policydesk://documents/{documentKey}.
// The key is path-unescaped so filenames with spaces resolve.
func extractDocumentKey(uri string) string {
	const prefix = documentsURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	key, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return key
}
