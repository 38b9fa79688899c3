// Package mcpadapter exposes the compliance engine as MCP tools so agents can
// read a company's roadmap without going through the REST API.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
)

const (
	ToolListCatalog = "list_document_catalog"
	ToolGetRoadmap  = "get_compliance_roadmap"
	ToolGetStatus   = "get_compliance_status"
)

// ToolCallRecorder observes every tool call outcome ("ok", "invalid",
// "not_found", "error").
type ToolCallRecorder func(tool, status string)

type Server struct {
	mcp        *server.MCPServer
	compliance ports.ComplianceService
	record     ToolCallRecorder
}

func NewServer(name, version string, compliance ports.ComplianceService, record ToolCallRecorder) *Server {
	if record == nil {
		record = func(string, string) {}
	}
	s := &Server{
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(true),
		),
		compliance: compliance,
		record:     record,
	}
	s.registerTools()
	return s
}

// MCP returns the underlying MCPServer.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Handler serves the streamable HTTP transport. The router decides the mount
// path, so no endpoint path is configured here.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool(
			ToolListCatalog,
			mcp.WithDescription("Lists every HR policy and form template the platform can generate"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleListCatalog,
	)

	s.mcp.AddTool(
		mcp.NewTool(
			ToolGetRoadmap,
			mcp.WithDescription("Returns the prioritized compliance roadmap for a company, with completion status per document"),
			mcp.WithString("company_id", mcp.Required(), mcp.Description("Company identifier")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetRoadmap,
	)

	s.mcp.AddTool(
		mcp.NewTool(
			ToolGetStatus,
			mcp.WithDescription("Returns the compliance score, missing critical documents and the next recommended document"),
			mcp.WithString("company_id", mcp.Required(), mcp.Description("Company identifier")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetStatus,
	)
}

func (s *Server) handleListCatalog(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.jsonResult(ToolListCatalog, map[string]any{"documents": s.compliance.Catalog()})
}

func (s *Server) handleGetRoadmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	companyID, errResult := s.companyID(ToolGetRoadmap, req)
	if errResult != nil {
		return errResult, nil
	}
	assessment, err := s.compliance.Assessment(ctx, companyID)
	if err != nil {
		return s.errorResult(ToolGetRoadmap, err), nil
	}
	return s.jsonResult(ToolGetRoadmap, map[string]any{
		"company_id": companyID,
		"items":      assessment.Items,
		"status":     assessment.Status,
	})
}

func (s *Server) handleGetStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	companyID, errResult := s.companyID(ToolGetStatus, req)
	if errResult != nil {
		return errResult, nil
	}
	status, err := s.compliance.Status(ctx, companyID)
	if err != nil {
		return s.errorResult(ToolGetStatus, err), nil
	}
	return s.jsonResult(ToolGetStatus, status)
}

func (s *Server) companyID(tool string, req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	companyID, err := req.RequireString("company_id")
	if err != nil || strings.TrimSpace(companyID) == "" {
		s.record(tool, "invalid")
		return "", mcp.NewToolResultError("parameter 'company_id' is required")
	}
	return strings.TrimSpace(companyID), nil
}

func (s *Server) jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.record(tool, "error")
		return nil, fmt.Errorf("marshal %s result: %w", tool, err)
	}
	s.record(tool, "ok")
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult reports domain failures inside the tool result so the calling
// agent can read them.
func (s *Server) errorResult(tool string, err error) *mcp.CallToolResult {
	switch {
	case domain.IsKind(err, domain.ErrProfileNotFound):
		s.record(tool, "not_found")
		return mcp.NewToolResultError("company profile not found; create a profile first")
	case domain.IsKind(err, domain.ErrInvalidInput):
		s.record(tool, "invalid")
		return mcp.NewToolResultError(err.Error())
	default:
		s.record(tool, "error")
		slog.Error("mcp_tool_failed", "tool", tool, "error", err)
		return mcp.NewToolResultError("internal error")
	}
}
