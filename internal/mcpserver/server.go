// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note index as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notesearch/internal/noteservice"
)

// RecordFormatURI is the resource URI of RecordFormatContract.
const RecordFormatURI = "notesearch://record-format"

// Server wraps the MCP server with note index tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"notesearch",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes with whitespace-separated AND terms: words, word prefixes (wor*), "+
			"tags (tag:work, tag:wo*) and creation dates (created:20230101). "+
			"Returns matching guids ordered by creation time."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the indexed fields of a note that has not been deleted."),
		mcp.WithString("guid", mcp.Required(), mcp.Description("Note identifier")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Index a new note record. The record MUST follow the record format; "+
			"read it first via the get_record_format tool or the "+RecordFormatURI+" resource."),
		mcp.WithString("record", mcp.Required(), mcp.Description("Note record ending in </note>")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the note whose guid matches the record."),
		mcp.WithString("record", mcp.Required(), mcp.Description("Note record ending in </note>")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note. Deleted guids never appear in search results again."),
		mcp.WithString("guid", mcp.Required(), mcp.Description("Note identifier")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("index_stats",
		mcp.WithDescription("Report corpus size, deleted notes and distinct tags, words and dates."),
	), s.indexStats)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the note record format and query syntax. "+
			"Call this before creating or updating notes."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(RecordFormatURI, "Note Record Format",
			mcp.WithResourceDescription("Note record format and query syntax."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio serves MCP requests from in and writes responses to out until
// ctx is cancelled or in is exhausted.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := s.svc.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guid, err := req.RequireString("guid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.GetNote(ctx, guid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", guid)), nil
	}
	out, _ := json.MarshalIndent(struct {
		GUID     string   `json:"guid"`
		Created  string   `json:"created"`
		Tags     []string `json:"tags"`
		Words    []string `json:"words"`
		Checksum string   `json:"checksum"`
	}{n.ID, n.Created.Format("2006-01-02T15:04:05"), nonNil(n.Tags), nonNil(n.Words), n.Checksum}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	record, err := req.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.CreateNote(ctx, []byte(record))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	record, err := req.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.UpdateNote(ctx, []byte(record))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", n.ID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guid, err := req.RequireString("guid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, guid); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", guid)), nil
}

func (s *Server) indexStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Stats(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getRecordFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RecordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
