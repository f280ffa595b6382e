package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *db.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *db.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: store, cfg: cfg}
}

// Request types for each tool

// TextRequest represents the arguments for detect and triage.
type TextRequest struct {
	Text        string `json:"text"`
	File        string `json:"file,omitempty"`
	Category    string `json:"category,omitempty"`
	MeetingType string `json:"meeting_type,omitempty"`
}

// ScanRequest represents the arguments for scan.
type ScanRequest struct {
	Documents []TextRequest `json:"documents"`
}

// RecordInteractionRequest represents the arguments for record_interaction.
type RecordInteractionRequest struct {
	PersonKey  string   `json:"person_key"`
	Type       string   `json:"type,omitempty"`
	OccurredAt int64    `json:"occurred_at,omitempty"`
	Quality    int      `json:"quality,omitempty"`
	Topics     []string `json:"topics,omitempty"`
}

// StatusRequest represents a bare status filter.
type StatusRequest struct {
	Status string `json:"status,omitempty"`
}

// AddPersonRequest represents the arguments for person_add.
type AddPersonRequest struct {
	Name       string   `json:"name"`
	Role       string   `json:"role,omitempty"`
	Team       string   `json:"team,omitempty"`
	Importance string   `json:"importance,omitempty"`
	Cadence    string   `json:"cadence,omitempty"`
	Channels   []string `json:"channels,omitempty"`
	Style      string   `json:"style,omitempty"`
}

// KeyRequest represents a bare person-key argument.
type KeyRequest struct {
	Key       string `json:"key,omitempty"`
	PersonKey string `json:"person_key,omitempty"`
}

// ResolveReviewRequest represents the arguments for review_resolve.
type ResolveReviewRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// AddLinkRequest represents the arguments for link_add.
type AddLinkRequest struct {
	PersonKey       string `json:"person_key"`
	Initiative      string `json:"initiative"`
	Level           string `json:"level"`
	RequiredCadence string `json:"required_cadence"`
}

// LogRequest represents the arguments for log.
type LogRequest struct {
	Limit int `json:"limit,omitempty"`
}

// Handler implementations

// HandleDetect handles the detect tool call.
func (h *Handlers) HandleDetect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Detect(ctx, h.cfg, ops.DetectInput{
		Text: input.Text, File: input.File,
		Category: input.Category, MeetingType: input.MeetingType,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTriage handles the triage tool call.
func (h *Handlers) HandleTriage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Triage(ctx, h.store, h.cfg, ops.TriageInput{
		Text: input.Text, File: input.File,
		Category: input.Category, MeetingType: input.MeetingType,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleScan handles the scan tool call.
func (h *Handlers) HandleScan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScanRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	docs := make([]ops.ScanDocument, len(input.Documents))
	for i, d := range input.Documents {
		docs[i] = ops.ScanDocument{
			Text: d.Text, File: d.File,
			Category: d.Category, MeetingType: d.MeetingType,
		}
	}

	result, err := ops.Scan(ctx, h.store, h.cfg, ops.ScanInput{Documents: docs})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRecordInteraction handles the record_interaction tool call.
func (h *Handlers) HandleRecordInteraction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordInteractionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordInteraction(ctx, h.store, h.cfg, ops.RecordInteractionInput{
		PersonKey:  input.PersonKey,
		Type:       input.Type,
		OccurredAt: input.OccurredAt,
		Quality:    input.Quality,
		Topics:     input.Topics,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRecommend handles the recommend tool call.
func (h *Handlers) HandleRecommend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GenerateRecommendations(ctx, h.store, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleListRecommendations handles the recommendations tool call.
func (h *Handlers) HandleListRecommendations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListRecommendations(ctx, h.store, h.cfg, ops.ListRecommendationsInput{Status: input.Status})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAddPerson handles the person_add tool call.
func (h *Handlers) HandleAddPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddPersonRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddPerson(ctx, h.store, h.cfg, ops.AddPersonInput{
		Name: input.Name, Role: input.Role, Team: input.Team,
		Importance: input.Importance, Cadence: input.Cadence,
		Channels: input.Channels, Style: input.Style,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGetPerson handles the person_get tool call.
func (h *Handlers) HandleGetPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[KeyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	key := input.Key
	if key == "" {
		key = input.PersonKey
	}
	result, err := ops.GetPerson(ctx, h.store, h.cfg, ops.GetPersonInput{Key: key})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleListPeople handles the people_list tool call.
func (h *Handlers) HandleListPeople(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListPeople(ctx, h.store, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleListTasks handles the tasks_list tool call.
func (h *Handlers) HandleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListTasks(ctx, h.store, h.cfg, ops.ListTasksInput{Status: input.Status})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleListReviews handles the reviews_list tool call.
func (h *Handlers) HandleListReviews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListReviews(ctx, h.store, h.cfg, ops.ListReviewsInput{Status: input.Status})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleResolveReview handles the review_resolve tool call.
func (h *Handlers) HandleResolveReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResolveReviewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ResolveReview(ctx, h.store, h.cfg, ops.ResolveReviewInput{
		ID: input.ID, Action: input.Action,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAddLink handles the link_add tool call.
func (h *Handlers) HandleAddLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddLinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddLink(ctx, h.store, h.cfg, ops.AddLinkInput{
		PersonKey: input.PersonKey, Initiative: input.Initiative,
		Level: input.Level, RequiredCadence: input.RequiredCadence,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleListLinks handles the links_list tool call.
func (h *Handlers) HandleListLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[KeyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	key := input.PersonKey
	if key == "" {
		key = input.Key
	}
	result, err := ops.ListLinks(ctx, h.store, h.cfg, ops.ListLinksInput{PersonKey: key})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLog handles the log tool call.
func (h *Handlers) HandleLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListDetectionLog(ctx, h.store, h.cfg, ops.ListDetectionLogInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed to avoid leaking file paths or
// SQL errors to the client.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tendErr, ok := err.(*errors.TendError); ok {
		errorObj := map[string]any{
			"code":    tendErr.Code,
			"message": tendErr.Message,
			"status":  tendErr.Status,
		}
		if tendErr.Code != errors.ErrInternal && tendErr.Details != nil {
			errorObj["details"] = tendErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
