package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mkurahn/wayfind/kit"
)

// RegisterMCP registers the pipeline tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerProcessTool(srv)
	p.registerReportTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type processReq struct {
	Session json.RawMessage `json:"session"`
}

func (r *processReq) payload() ([]byte, error) {
	if len(r.Session) == 0 {
		return nil, fmt.Errorf("missing session payload")
	}
	return []byte(r.Session), nil
}

func (p *Pipeline) registerProcessTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "wayfind_process",
		Description: "Process a captured shopping session into quality-ranked training examples.",
		InputSchema: inputSchema(map[string]any{
			"session": map[string]any{
				"type":        "object",
				"description": "Session payload: an object with session_id/task/events, or a bare event array",
			},
		}, []string{"session"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*processReq)
		payload, err := r.payload()
		if err != nil {
			return nil, err
		}
		return p.ProcessPayload(ctx, payload)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r processReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (p *Pipeline) registerReportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "wayfind_report",
		Description: "Process a captured session and return only the dataset-health report.",
		InputSchema: inputSchema(map[string]any{
			"session": map[string]any{
				"type":        "object",
				"description": "Session payload: an object with session_id/task/events, or a bare event array",
			},
		}, []string{"session"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*processReq)
		payload, err := r.payload()
		if err != nil {
			return nil, err
		}
		res, err := p.ProcessPayload(ctx, payload)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"session_id": res.SessionID,
			"journeys":   res.Journeys,
			"report":     res.Report,
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r processReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
