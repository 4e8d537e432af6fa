package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func connect(t *testing.T) (*mcp.ClientSession, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- New(Options{}).serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	return session, cancel, serveErr
}

func TestServerListsTools(t *testing.T) {
	session, cancel, serveErr := connect(t)
	defer cancel()
	defer session.Close()

	tools, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"simulate_encounter", "ability_catalog"} {
		if !names[want] {
			t.Fatalf("tool %s not registered (got %v)", want, names)
		}
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServerSimulatesEncounter(t *testing.T) {
	session, cancel, _ := connect(t)
	defer cancel()
	defer session.Close()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "simulate_encounter",
		Arguments: map[string]any{
			"scenario": `
local s = Scenario.new("duel")
s:seed(9)
s:turn_cap(30)
s:party("Paladin", { template = "paladin", policy = "random" })
s:opposition("Skeleton", { template = "skeleton", policy = "random" })
return s`,
		},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %+v", result.Content)
	}
	data, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out struct {
		Seed       int64 `json:"seed"`
		Encounters []struct {
			Turns int `json:"turns"`
		} `json:"encounters"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Seed != 9 || len(out.Encounters) != 1 {
		t.Fatalf("result = %+v", out)
	}
	if out.Encounters[0].Turns > 30 {
		t.Fatalf("turns = %d beyond cap", out.Encounters[0].Turns)
	}
}

func TestServerReportsToolErrors(t *testing.T) {
	session, cancel, _ := connect(t)
	defer cancel()
	defer session.Close()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "simulate_encounter",
		Arguments: map[string]any{"scenario": ""},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error result")
	}
}

func TestServeRequiresServer(t *testing.T) {
	var s *Server
	if err := s.serveWithTransport(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil server")
	}
}
