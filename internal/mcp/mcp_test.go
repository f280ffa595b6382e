package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*Handlers, *db.Store) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := db.NewStore(database)
	return NewHandlers(store, config.DefaultConfig()), store
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is not text: %T", result.Content[0])
	}
	return text.Text
}

// errorCode extracts the error code from an error result payload.
func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	return payload.Error.Code
}

func TestHandleDetect_MissingText(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleDetect(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if code := errorCode(t, result); code != "INVALID_REQUEST" {
		t.Errorf("code = %s, want INVALID_REQUEST", code)
	}
}

func TestHandleTriage_CreatesRecords(t *testing.T) {
	h, store := testSetup(t)

	result, err := h.HandleTriage(context.Background(), makeRequest(map[string]any{
		"text": "Sarah Chen, VP of engineering, is the decision maker for the platform budget and headcount.\n" +
			"She prefers direct slack messages over email.\n\n" +
			"Sarah will review the platform roadmap by Friday.",
		"category":     "one_on_one",
		"meeting_type": "leadership",
	}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var out struct {
		Processed int `json:"processed"`
		Failed    int `json:"failed"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.Processed == 0 || out.Failed != 0 {
		t.Errorf("processed = %d, failed = %d", out.Processed, out.Failed)
	}

	if _, err := store.GetPerson(context.Background(), "sarahchen"); err != nil {
		t.Errorf("person not created: %v", err)
	}
}

func TestHandleGetPerson_NotFound(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleGetPerson(context.Background(), makeRequest(map[string]any{
		"key": "ghost",
	}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if code := errorCode(t, result); code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestHandleAddPerson_ThenList(t *testing.T) {
	h, _ := testSetup(t)
	ctx := context.Background()

	result, err := h.HandleAddPerson(ctx, makeRequest(map[string]any{
		"name":       "Priya Nair",
		"importance": "critical",
	}))
	if err != nil {
		t.Fatalf("HandleAddPerson: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	listResult, err := h.HandleListPeople(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("HandleListPeople: %v", err)
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, listResult)), &out); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("count = %d, want 1", out.Count)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"tend_detect", "tend_bogus"})
	if len(unknown) != 1 || unknown[0] != "tend_bogus" {
		t.Errorf("unknown = %v, want [tend_bogus]", unknown)
	}
}

func TestNewServer_SkipsDisabledTools(t *testing.T) {
	_, store := testSetup(t)

	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"tend_scan"}

	if s := NewServer(store, cfg, "test"); s == nil {
		t.Fatal("NewServer returned nil")
	}
}
