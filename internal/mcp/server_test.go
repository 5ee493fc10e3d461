package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalworks/pulse/internal/recommend"
	"github.com/signalworks/pulse/internal/store"
	"github.com/mark3labs/mcp-go/server"
)

func setupTestServer(t *testing.T) (*server.MCPServer, store.Store) {
	t.Helper()
	s, err := store.NewStore(store.StoreConfig{DBPath: filepath.Join(t.TempDir(), "pulse.db")})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	srv := NewServer(ServerConfig{
		Store:    s,
		Services: []string{"Drain Cleaning"},
		Options:  recommend.DefaultOptions(),
		Version:  "test",
	})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	return srv, s
}

// callTool invokes an MCP tool through the JSON-RPC surface.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) (string, bool) {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	var text strings.Builder
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), resp.Result.IsError
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestClassifyTool(t *testing.T) {
	srv, _ := setupTestServer(t)

	text, isErr := callTool(t, srv, "pulse_classify", map[string]interface{}{
		"transcript": "My basement is flooding, it's an emergency!",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	var sig struct {
		Intent  string `json:"intent"`
		Urgency string `json:"urgency"`
	}
	if err := json.Unmarshal([]byte(text), &sig); err != nil {
		t.Fatalf("parse result: %v\nraw: %s", err, text)
	}
	if sig.Intent != "emergency" || sig.Urgency != "high" {
		t.Errorf("classified as %+v", sig)
	}
}

func TestCallToolPersistsOpportunity(t *testing.T) {
	srv, s := setupTestServer(t)

	text, isErr := callTool(t, srv, "pulse_call", map[string]interface{}{
		"user_id":    "user-1",
		"transcript": "Can I get a quote for drain cleaning?",
		"price_min":  100,
		"price_max":  400,
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	list, err := s.ListOpportunities(context.Background(), "user-1", store.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(list))
	}
	if list[0].Topic != "Drain Cleaning" || list[0].Intent != "pricing" {
		t.Errorf("opportunity = %+v", list[0])
	}
}

func TestRecommendTool(t *testing.T) {
	srv, s := setupTestServer(t)

	text, isErr := callTool(t, srv, "pulse_recommend", map[string]interface{}{
		"user_id":              "user-1",
		"industry":             "plumbing",
		"business_size":        "small",
		"chaos_indicator":      8,
		"focus_areas":          "Revenue Growth, Marketing & Sales",
		"frequency":            "daily",
		"complexity_tolerance": "moderate",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	var report struct {
		Persisted int `json:"persisted"`
	}
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	if report.Persisted == 0 {
		t.Fatal("pass persisted nothing")
	}

	active, err := s.ListActive(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != report.Persisted {
		t.Errorf("active set = %d, report persisted = %d", len(active), report.Persisted)
	}
}

func TestOpportunityUpdateTool_InvalidTransition(t *testing.T) {
	srv, s := setupTestServer(t)
	ctx := context.Background()

	o := &store.Opportunity{UserID: "user-1", Intent: "pricing", Urgency: "low", Priority: "medium"}
	if err := s.CreateOpportunity(ctx, o); err != nil {
		t.Fatal(err)
	}

	// pending → converted is not a legal edge
	text, isErr := callTool(t, srv, "pulse_opportunity_update", map[string]interface{}{
		"id":     o.ID,
		"status": "converted",
	})
	if !isErr {
		t.Fatalf("expected tool error, got: %s", text)
	}
	if !strings.Contains(text, "invalid transition") {
		t.Errorf("error text = %q, want invalid transition", text)
	}

	got, _ := s.GetOpportunity(ctx, o.ID)
	if got.Status != store.OpportunityPending {
		t.Errorf("status mutated to %q", got.Status)
	}
}

func TestFeedbackTool(t *testing.T) {
	srv, s := setupTestServer(t)
	ctx := context.Background()

	rec := &store.ActiveRecommendation{
		UserID: "user-1", RecType: "marketing", Title: "Ask for reviews after every job",
		BasePriority: "high", Complexity: "simple", Score: 13,
	}
	if _, err := s.ReplaceActive(ctx, rec); err != nil {
		t.Fatal(err)
	}

	text, isErr := callTool(t, srv, "pulse_feedback", map[string]interface{}{
		"recommendation_id": rec.ID,
		"action":            "implemented",
		"seconds_on_item":   25,
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	got, err := s.GetRecommendation(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != store.RecommendationImplemented {
		t.Errorf("status = %q, want implemented", got.Status)
	}
}
