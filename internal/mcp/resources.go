// ABOUTME: MCP resource implementations for the member registry.
// ABOUTME: Provides fitcentre://dashboard and fitcentre://members resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/fitcentre/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	dashboardURI = "fitcentre://dashboard"
	membersURI   = "fitcentre://members"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         dashboardURI,
		Name:        "Fitness Centre Dashboard",
		Description: "Member and assessment counts, average BMI, and distributions",
		MIMEType:    "application/json",
	}, s.handleDashboardResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         membersURI,
		Name:        "Member Directory",
		Description: "All registered members ordered by name",
		MIMEType:    "application/json",
	}, s.handleMembersResource)
}

func (s *Server) handleDashboardResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	d, err := report.Build(s.repo, s.reportOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return jsonResource(dashboardURI, d)
}

func (s *Server) handleMembersResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	members, err := s.repo.ListMembers(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return jsonResource(membersURI, map[string]interface{}{
		"members": members,
		"count":   len(members),
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
