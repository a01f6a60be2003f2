// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes chart tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/daivaya/internal/horoscope"
)

const guideURI = "daivaya://chart-guide"

// Server wraps the MCP server with the chart tools.
type Server struct {
	mcp *server.MCPServer
	svc *horoscope.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *horoscope.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Daivaya",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	birth := []mcp.ToolOption{
		mcp.WithString("date", mcp.Required(), mcp.Description("Birth date, YYYY-MM-DD")),
		mcp.WithString("time", mcp.Required(), mcp.Description("Local birth time, HH:MM or HH:MM:SS")),
		mcp.WithString("place", mcp.Required(), mcp.Description("Birth place name, e.g. Colombo")),
	}

	s.mcp.AddTool(mcp.NewTool("compute_chart",
		append([]mcp.ToolOption{mcp.WithDescription("Compute the sidereal rasi (D1) and navamsa (D9) charts, " +
			"the Moon's nakshatra and the running Vimshottari mahadasha for a birth. " +
			"Read the chart guide resource to interpret the fields.")}, birth...)...,
	), s.computeChart)

	s.mcp.AddTool(mcp.NewTool("dasha_timeline",
		append([]mcp.ToolOption{mcp.WithDescription("List the Vimshottari mahadasha periods from birth, " +
			"one per line with start and end dates.")}, birth...)...,
	), s.dashaTimeline)

	s.mcp.AddTool(mcp.NewTool("match_porondam",
		mcp.WithDescription("Run the porondam compatibility checks for a bride and groom."),
		mcp.WithString("bride_date", mcp.Required(), mcp.Description("Bride's birth date, YYYY-MM-DD")),
		mcp.WithString("bride_time", mcp.Required(), mcp.Description("Bride's local birth time")),
		mcp.WithString("bride_place", mcp.Required(), mcp.Description("Bride's birth place")),
		mcp.WithString("groom_date", mcp.Required(), mcp.Description("Groom's birth date, YYYY-MM-DD")),
		mcp.WithString("groom_time", mcp.Required(), mcp.Description("Groom's local birth time")),
		mcp.WithString("groom_place", mcp.Required(), mcp.Description("Groom's birth place")),
	), s.matchPorondam)

	s.mcp.AddTool(mcp.NewTool("get_chart_guide",
		mcp.WithDescription("Returns the guide to the chart fields, signs, bodies and dasha order."),
	), s.getChartGuide)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Chart Guide",
			mcp.WithResourceDescription("How to read the charts returned by the tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
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

func birthArgs(req mcp.CallToolRequest, prefix string) (horoscope.BirthInput, error) {
	var in horoscope.BirthInput
	var err error
	if in.Date, err = req.RequireString(prefix + "date"); err != nil {
		return in, err
	}
	if in.Time, err = req.RequireString(prefix + "time"); err != nil {
		return in, err
	}
	if in.Place, err = req.RequireString(prefix + "place"); err != nil {
		return in, err
	}
	return in, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) computeChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := birthArgs(req, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.svc.Chart(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (s *Server) dashaTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := birthArgs(req, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.svc.Chart(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, p := range v.Dasha {
		marker := ""
		if p.Contains(s.svc.Now()) {
			marker = "  <- current"
		}
		fmt.Fprintf(&b, "%-8s %s  %s  %5.2f years%s\n",
			p.Lord, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"), p.Years(), marker)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) matchPorondam(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bride, err := birthArgs(req, "bride_")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	groom, err := birthArgs(req, "groom_")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pr, err := s.svc.Compatibility(ctx, horoscope.Pair{Person1: bride, Person2: groom})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pr)
}

func (s *Server) getChartGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ChartGuide), nil
}

func (s *Server) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     ChartGuide,
		},
	}, nil
}
