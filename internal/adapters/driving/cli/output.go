package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// documentRecord is the machine-readable form of a document.
type documentRecord struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Filename   string `json:"filename" yaml:"filename"`
	Pages      int    `json:"num_pages" yaml:"num_pages"`
	Chunks     int    `json:"chunks_count" yaml:"chunks_count"`
	Status     string `json:"status" yaml:"status"`
	UploadedAt string `json:"upload_date,omitempty" yaml:"upload_date,omitempty"`
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func validFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: unknown output format %q (want table, json or yaml)", domain.ErrValidation, format)
	}
}

func writeDocuments(w io.Writer, docs []domain.Document, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(documentRecords(docs))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(documentRecords(docs)); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(docs) == 0 {
			_, err := fmt.Fprintln(w, "No documents indexed.")
			return err
		}
		_, err := fmt.Fprintln(w, documentTable(docs))
		return err
	}
}

func documentRecords(docs []domain.Document) []documentRecord {
	out := make([]documentRecord, len(docs))
	for i, d := range docs {
		out[i] = documentRecord{
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

func documentTable(docs []domain.Document) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FILENAME", "PAGES", "CHUNKS", "STATUS", "UPLOADED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, d := range docs {
		uploaded := "-"
		if !d.UploadDate.IsZero() {
			uploaded = d.UploadDate.Local().Format("2006-01-02 15:04")
		}
		t.Row(d.Filename, strconv.Itoa(d.NumPages), strconv.Itoa(d.ChunksCount), d.Status.String(), uploaded)
	}
	return t.String()
}

// writeAnswer prints an assistant reply with its grounding and citations.
func writeAnswer(w io.Writer, msg domain.ChatMessage) {
	fmt.Fprintln(w, msg.Content)
	if label := msg.GroundingLabel(); label != "" {
		fmt.Fprintf(w, "\n(%s)\n", label)
	}
	if len(msg.Citations) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, c := range msg.Citations {
		fmt.Fprintf(w, "  [%d] page %d, %s relevant\n", i+1, c.PageNumber, c.FormatRelevance())
		if c.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", c.Snippet)
		}
	}
}
