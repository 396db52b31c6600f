// Package mcptool exposes the query pipeline as an MCP tool.
//
// When started with -mcp, finvox runs an MCP server over stdio instead
// of the HTTP front end, so an MCP-capable host (an agent framework or
// an editor) can issue financial queries through the standard tool
// protocol. A single tool is registered:
//
//	financial_query(text, use_retriever) -> pipeline result
package mcptool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/finvox/finvox/pkg/types"
)

// serverVersion is reported to MCP hosts during initialization.
const serverVersion = "1.0.0"

// QueryRunner executes one query through the full pipeline.
type QueryRunner interface {
	Run(ctx context.Context, text string, useRetriever bool) types.QueryResult
}

// QueryInput is the financial_query tool's input schema.
type QueryInput struct {
	// Text is the natural-language financial question.
	Text string `json:"text" jsonschema:"the financial question in natural language"`

	// UseRetriever enables the semantic retriever fallback tier.
	UseRetriever bool `json:"use_retriever,omitempty" jsonschema:"augment answers with the semantic document store"`
}

// QueryOutput is the financial_query tool's structured output.
type QueryOutput struct {
	Intent   string         `json:"intent"`
	Entities types.Entities `json:"entities"`
	Answer   string         `json:"answer"`
	Error    string         `json:"error,omitempty"`
}

// NewServer builds an MCP server with the financial_query tool bound to
// runner.
func NewServer(runner QueryRunner) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "finvox",
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "financial_query",
		Description: "Answer a natural-language question about company financials " +
			"(revenue, net income, stock price, ratios and more). Falls back to a " +
			"local dataset and web search when live data is unavailable.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
		if input.Text == "" {
			return nil, QueryOutput{}, fmt.Errorf("text is required")
		}

		res := runner.Run(ctx, input.Text, input.UseRetriever)
		out := QueryOutput{
			Intent:   res.Intent,
			Entities: res.Entities,
			Answer:   res.FinalResponse,
			Error:    res.Error,
		}

		text := res.FinalResponse
		if text == "" {
			text = res.Error
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, out, nil
	})

	return server
}

// Run serves MCP over stdio until ctx is cancelled or the host closes
// the stream.
func Run(ctx context.Context, runner QueryRunner) error {
	slog.Info("mcptool: serving financial_query over stdio")
	server := NewServer(runner)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcptool: serve: %w", err)
	}
	return nil
}
