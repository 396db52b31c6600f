package mcptool

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/finvox/finvox/pkg/types"
)

type stubRunner struct {
	result types.QueryResult
	texts  []string
	flags  []bool
}

func (r *stubRunner) Run(_ context.Context, text string, useRetriever bool) types.QueryResult {
	r.texts = append(r.texts, text)
	r.flags = append(r.flags, useRetriever)
	return r.result
}

// connect wires a test client to the finvox MCP server over in-memory
// transports.
func connect(t *testing.T, runner QueryRunner) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	server := NewServer(runner)

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-host", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		session.Close()
		<-serverDone
	})
	return session
}

func TestFinancialQueryTool(t *testing.T) {
	runner := &stubRunner{result: types.QueryResult{
		Intent:        "get_revenue",
		Entities:      types.Entities{Ticker: "AAPL", Metric: "revenue", Year: "2023"},
		FinalResponse: "The revenue for AAPL in 2023 is $383.29 billion.",
	}}
	session := connect(t, runner)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "financial_query",
		Arguments: map[string]any{
			"text":          "What was Apple's revenue in 2023?",
			"use_retriever": true,
		},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned error: %v", res.Content)
	}

	if len(runner.texts) != 1 || runner.texts[0] != "What was Apple's revenue in 2023?" {
		t.Errorf("runner texts = %v", runner.texts)
	}
	if len(runner.flags) != 1 || !runner.flags[0] {
		t.Errorf("use_retriever flag was not forwarded, got %v", runner.flags)
	}

	if len(res.Content) == 0 {
		t.Fatal("tool returned no content")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want *mcp.TextContent", res.Content[0])
	}
	if !strings.Contains(tc.Text, "$383.29 billion") {
		t.Errorf("text content = %q, want the pipeline answer", tc.Text)
	}
}

func TestFinancialQueryTool_EmptyText(t *testing.T) {
	session := connect(t, &stubRunner{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "financial_query",
		Arguments: map[string]any{"text": ""},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for empty text")
	}
}

func TestToolIsListed(t *testing.T) {
	session := connect(t, &stubRunner{})

	tools, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	found := false
	for _, tool := range tools.Tools {
		if tool.Name == "financial_query" {
			found = true
		}
	}
	if !found {
		t.Errorf("financial_query not in tool list: %v", tools.Tools)
	}
}
