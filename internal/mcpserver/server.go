// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the image upload pipeline for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halvard/ansuz/internal/imageservice"
	"github.com/halvard/ansuz/internal/markdown"
	"github.com/halvard/ansuz/internal/storage"
)

// Pipeline is the slice of the upload service the tools need.
type Pipeline interface {
	UploadNew(ctx context.Context, req imageservice.PasteRequest) (*imageservice.UploadResult, error)
	Batch(ctx context.Context, notePath, mode string) (imageservice.BatchResult, error)
}

// Checker probes connectivity to the remote store.
type Checker interface {
	TestConnection(ctx context.Context) bool
}

// Server wraps the MCP server with upload tools.
type Server struct {
	mcp   *server.MCPServer
	svc   Pipeline
	store storage.Provider
	dav   Checker
}

// New creates a new MCP server with all tools registered.
func New(svc Pipeline, store storage.Provider, dav Checker) *Server {
	s := &Server{svc: svc, store: store, dav: dav}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Upload an image to the remote store and append the hosted "+
			"Markdown link to a note. The source may be an http(s) URL or a base64 data URI. "+
			"Links follow the format described by the ansuz://image-links resource."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Relative path of the note receiving the link (e.g. topics/cats.md)")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Image source: http(s) URL or data:image/...;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Preferred original file name (used by template naming)")),
		mcp.WithString("mode", mcp.Description("Rename mode override: ai or template")),
	), s.uploadImage)

	s.mcp.AddTool(mcp.NewTool("upload_note_images",
		mcp.WithDescription("Upload every not-yet-hosted image referenced by a note and "+
			"rewrite the references in place. Returns uploaded/failed/skipped counts."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Relative path of the note to process")),
		mcp.WithString("mode", mcp.Description("Rename mode override: ai or template")),
	), s.uploadNoteImages)

	s.mcp.AddTool(mcp.NewTool("list_note_images",
		mcp.WithDescription("List every image reference in a note, with its link syntax and "+
			"whether it is already remote."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Relative path of the note to scan")),
	), s.listNoteImages)

	s.mcp.AddTool(mcp.NewTool("check_webdav",
		mcp.WithDescription("Probe the WebDAV connection with the configured credentials."),
	), s.checkWebDAV)

	// Resource: image link contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://image-links", "Image Link Contract",
			mcp.WithResourceDescription("How hosted image links are written into notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readImageLinkResource,
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

func (s *Server) uploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, fetchedName, err := imageservice.Fetch(ctx, source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	originalName := fetchedName
	if v, fErr := req.RequireString("filename"); fErr == nil && v != "" {
		originalName = v
	}
	mode := ""
	if v, mErr := req.RequireString("mode"); mErr == nil {
		mode = v
	}

	res, err := s.svc.UploadNew(ctx, imageservice.PasteRequest{
		NotePath:     note,
		Cursor:       1 << 30, // append at the end
		Data:         data,
		OriginalName: originalName,
		Mode:         mode,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.Marshal(res)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) uploadNoteImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := ""
	if v, mErr := req.RequireString("mode"); mErr == nil {
		mode = v
	}

	res, err := s.svc.Batch(ctx, note, mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.Marshal(res)
	return mcp.NewToolResultText(string(out)), nil
}

type noteImage struct {
	Target string `json:"target"`
	Syntax string `json:"syntax"`
	Remote bool   `json:"remote"`
	Size   string `json:"size,omitempty"`
}

func (s *Server) listNoteImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := s.store.Read(note)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", note)), nil
	}

	images := []noteImage{}
	for _, ref := range markdown.FindAll(string(data)) {
		images = append(images, noteImage{
			Target: ref.TargetPath,
			Syntax: string(ref.Kind),
			Remote: ref.IsRemote(),
			Size:   ref.Size,
		})
	}

	out, _ := json.MarshalIndent(images, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) checkWebDAV(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.dav.TestConnection(ctx) {
		return mcp.NewToolResultText("webdav: ok"), nil
	}
	return mcp.NewToolResultError("webdav: connection failed"), nil
}

func (s *Server) readImageLinkResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://image-links",
			MIMEType: "text/markdown",
			Text:     ImageLinkContract,
		},
	}, nil
}
