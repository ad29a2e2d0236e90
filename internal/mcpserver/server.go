// Package mcpserver exposes the dictation daemon, the language tables and the
// transcript history as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/db"
	"github.com/delulutalks/delulu/internal/reference"
)

const (
	serverName    = "delulu"
	serverVersion = "0.1.0"

	defaultTranscripts = 10
	maxTranscripts     = 100
)

// Options configures the tool server.
type Options struct {
	Backend daemon.Backend
	// Store is the transcript history. Nil disables recent_transcripts.
	Store  *db.Store
	Logger zerolog.Logger
}

// Server holds the MCP server and the dependencies its tools call.
type Server struct {
	mcp     *server.MCPServer
	backend daemon.Backend
	store   *db.Store
	log     zerolog.Logger
}

// New registers every tool.
func New(opts Options) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
		backend: opts.Backend,
		store:   opts.Store,
		log:     opts.Logger,
	}

	s.mcp.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Current dictation phase and message"),
	), s.handleGetStatus)

	s.mcp.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("The dictation daemon's saved settings"),
	), s.handleGetSettings)

	s.mcp.AddTool(mcp.NewTool("toggle_dictation",
		mcp.WithDescription("Start or stop dictation"),
	), s.handleToggle)

	s.mcp.AddTool(mcp.NewTool("start_dictation",
		mcp.WithDescription("Start listening for dictation"),
	), s.handleStart)

	s.mcp.AddTool(mcp.NewTool("stop_dictation",
		mcp.WithDescription("Stop listening and transcribe what was heard"),
	), s.handleStop)

	s.mcp.AddTool(mcp.NewTool("resolve_language",
		mcp.WithDescription("Resolve a language code, name or \"Name (code)\" to a supported language"),
		mcp.WithString("input", mcp.Required(), mcp.Description("Language code or name")),
	), s.handleResolveLanguage)

	s.mcp.AddTool(mcp.NewTool("filter_languages",
		mcp.WithDescription("Search supported languages by substring"),
		mcp.WithString("query", mcp.Description("Substring to match; empty lists the first entries")),
	), s.handleFilterLanguages)

	s.mcp.AddTool(mcp.NewTool("normalize_shortcut",
		mcp.WithDescription("Canonicalize a keyboard shortcut such as ctrl+shift+space"),
		mcp.WithString("shortcut", mcp.Required(), mcp.Description("Shortcut to canonicalize")),
	), s.handleNormalizeShortcut)

	s.mcp.AddTool(mcp.NewTool("recent_transcripts",
		mcp.WithDescription("Most recent dictated transcripts, newest first"),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("How many to return (default %d, max %d)", defaultTranscripts, maxTranscripts))),
	), s.handleRecentTranscripts)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over in/out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.Info().Msg("mcp server started")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	s.log.Info().Err(err).Msg("mcp server stopped")
	return err
}

func (s *Server) handleGetStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.backend.Status(ctx)
	if err != nil {
		return s.toolError("get_status", err), nil
	}
	return jsonResult(st)
}

func (s *Server) handleGetSettings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := s.backend.Settings(ctx)
	if err != nil {
		return s.toolError("get_settings", err), nil
	}
	return jsonResult(settings)
}

func (s *Server) handleToggle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.backend.ToggleDictation(ctx); err != nil {
		return s.toolError("toggle_dictation", err), nil
	}
	return mcp.NewToolResultText("toggled"), nil
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.backend.StartDictation(ctx); err != nil {
		return s.toolError("start_dictation", err), nil
	}
	return mcp.NewToolResultText("started"), nil
}

func (s *Server) handleStop(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.backend.StopDictation(ctx); err != nil {
		return s.toolError("stop_dictation", err), nil
	}
	return mcp.NewToolResultText("stopped"), nil
}

type languageResult struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Display string `json:"display"`
}

func toLanguageResult(opt reference.LanguageOption) languageResult {
	return languageResult{Code: opt.Code, Label: opt.Label, Display: reference.Display(opt)}
}

func (s *Server) handleResolveLanguage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opt, ok := reference.Resolve(input)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no supported language matches %q", input)), nil
	}
	return jsonResult(toLanguageResult(opt))
}

func (s *Server) handleFilterLanguages(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matches := reference.Filter(req.GetString("query", ""))
	out := make([]languageResult, 0, len(matches))
	for _, opt := range matches {
		out = append(out, toLanguageResult(opt))
	}
	return jsonResult(out)
}

func (s *Server) handleNormalizeShortcut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("shortcut")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return mcp.NewToolResultError("shortcut must not be empty"), nil
	}
	canonical, err := s.backend.NormalizeShortcut(ctx, raw)
	if err != nil {
		return s.toolError("normalize_shortcut", err), nil
	}
	return mcp.NewToolResultText(canonical), nil
}

func (s *Server) handleRecentTranscripts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("transcript history is disabled"), nil
	}
	limit := req.GetInt("limit", defaultTranscripts)
	if limit <= 0 {
		limit = defaultTranscripts
	}
	limit = min(limit, maxTranscripts)

	transcripts, err := s.store.RecentTranscripts(limit)
	if err != nil {
		return s.toolError("recent_transcripts", err), nil
	}
	if transcripts == nil {
		transcripts = []db.Transcript{}
	}
	return jsonResult(transcripts)
}

// toolError logs err and reports it to the caller as a tool failure.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.log.Warn().Err(err).Str("tool", tool).Msg("tool failed")
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
