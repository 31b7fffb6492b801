// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the Markdown-to-Confluence converter for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/confluence"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/frontmatter"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/index"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/storage"
)

// Server wraps the MCP server with converter tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    index.PageIndex
	conv  *confluence.Converter
}

// New creates a new MCP server with all converter tools registered.
func New(store storage.Provider, db index.PageIndex, conv *confluence.Converter) *Server {
	s := &Server{store: store, db: db, conv: conv}

	s.mcp = server.NewMCPServer(
		"markdown-to-confluence",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List every converted Confluence page with its source path and title."),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the converted Confluence storage-format XHTML of a page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Source path of the document (e.g. guides/setup.md)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search converted pages by title and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("convert_markdown",
		mcp.WithDescription("Convert an ad-hoc Markdown snippet into Confluence storage-format "+
			"XHTML. Supports the custom alert delimiters and front matter described by the "+
			"get_authoring_contract tool. Returns the page XHTML and the attachment paths "+
			"that would need uploading."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown content, optionally with YAML front matter")),
	), s.convertMarkdown)

	s.mcp.AddTool(mcp.NewTool("get_authoring_contract",
		mcp.WithDescription("Returns the canonical documentation format contract. "+
			"Call this before writing Markdown meant for Confluence conversion."),
	), s.getAuthoringContract)

	// Resource: authoring contract.
	s.mcp.AddResource(
		mcp.NewResource("md2conf://doc-format", "Documentation Format Contract",
			mcp.WithResourceDescription("Canonical Markdown format that convertible documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, _, err := s.db.ListPages(0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type item struct {
		Path  string `json:"path"`
		Title string `json:"title"`
	}
	items := make([]item, len(rows))
	for i, r := range rows {
		items[i] = item{Path: r.Path, Title: r.Title}
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	html, err := s.db.GetHTML(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) convertMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Ad-hoc snippets don't need a title; ignore the missing-title error
	// as long as a body came out.
	fm, body, fmErr := frontmatter.Parse([]byte(source))
	if fmErr != nil && body == "" {
		return mcp.NewToolResultError(fmErr.Error()), nil
	}

	html, attachments, err := s.conv.Convert([]byte(body), fm)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString(html)
	if len(attachments) > 0 {
		sb.WriteString("\n\n<!-- attachments to upload: ")
		sb.WriteString(strings.Join(attachments, ", "))
		sb.WriteString(" -->")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) getAuthoringContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AuthoringContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "md2conf://doc-format",
			MIMEType: "text/markdown",
			Text:     AuthoringContract,
		},
	}, nil
}
