// Package mcp exposes the operation layer as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"tend_detect": {
		def:     detectToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDetect },
	},
	"tend_triage": {
		def:     triageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTriage },
	},
	"tend_scan": {
		def:     scanToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScan },
	},
	"tend_record_interaction": {
		def:     recordInteractionToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordInteraction },
	},
	"tend_recommend": {
		def:     recommendToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecommend },
	},
	"tend_recommendations": {
		def:     listRecommendationsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListRecommendations },
	},
	"tend_person_add": {
		def:     addPersonToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddPerson },
	},
	"tend_person_get": {
		def:     getPersonToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetPerson },
	},
	"tend_people_list": {
		def:     listPeopleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListPeople },
	},
	"tend_tasks_list": {
		def:     listTasksToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListTasks },
	},
	"tend_reviews_list": {
		def:     listReviewsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListReviews },
	},
	"tend_review_resolve": {
		def:     resolveReviewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleResolveReview },
	},
	"tend_link_add": {
		def:     addLinkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddLink },
	},
	"tend_links_list": {
		def:     listLinksToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListLinks },
	},
	"tend_log": {
		def:     logToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLog },
	},
}

// Tool definitions

var detectToolDef = mcp.NewTool("tend_detect",
	mcp.WithDescription("Scan text for people and tasks without writing anything. Dry-run counterpart of tend_triage."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Raw note text, markdown allowed")),
	mcp.WithString("file", mcp.Description("Originating file path")),
	mcp.WithString("category", mcp.Description("Source category: meeting_prep, meeting, one_on_one, planning, journal")),
	mcp.WithString("meeting_type", mcp.Description("Meeting type, e.g. leadership, strategic_planning")),
)

var triageToolDef = mcp.NewTool("tend_triage",
	mcp.WithDescription("Scan text and route every candidate: auto-create records, queue reviews, suggest updates, or discard."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Raw note text, markdown allowed")),
	mcp.WithString("file", mcp.Description("Originating file path")),
	mcp.WithString("category", mcp.Description("Source category")),
	mcp.WithString("meeting_type", mcp.Description("Meeting type")),
)

var scanToolDef = mcp.NewTool("tend_scan",
	mcp.WithDescription("Triage multiple documents in one pass. One document's failure never blocks the rest."),
	mcp.WithArray("documents", mcp.Required(),
		mcp.Description("Documents to scan; each has text plus optional file, category, meeting_type"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":         map[string]any{"type": "string"},
				"file":         map[string]any{"type": "string"},
				"category":     map[string]any{"type": "string"},
				"meeting_type": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		}),
	),
)

var recordInteractionToolDef = mcp.NewTool("tend_record_interaction",
	mcp.WithDescription("Log an interaction with a known person. Supersedes that person's pending recommendations."),
	mcp.WithString("person_key", mcp.Required(), mcp.Description("Stable key or display name")),
	mcp.WithString("type", mcp.Description("meeting, chat, email, call, or ad_hoc")),
	mcp.WithNumber("occurred_at", mcp.Description("Unix timestamp; omit for now")),
	mcp.WithNumber("quality", mcp.Description("Quality rating 1-5")),
	mcp.WithArray("topics", mcp.Description("Topics discussed"),
		mcp.Items(map[string]any{"type": "string"})),
)

var recommendToolDef = mcp.NewTool("tend_recommend",
	mcp.WithDescription("Rebuild engagement recommendations from current records and interaction history."),
)

var listRecommendationsToolDef = mcp.NewTool("tend_recommendations",
	mcp.WithDescription("List stored recommendations without regenerating."),
	mcp.WithString("status", mcp.Description("pending, completed, or expired; omit for all")),
)

var addPersonToolDef = mcp.NewTool("tend_person_add",
	mcp.WithDescription("Create a person record directly, bypassing detection."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
	mcp.WithString("role", mcp.Description("Role title")),
	mcp.WithString("team", mcp.Description("Team or org unit")),
	mcp.WithString("importance", mcp.Description("critical, high, medium, or low")),
	mcp.WithString("cadence", mcp.Description("weekly, biweekly, monthly, quarterly, or as_needed")),
	mcp.WithArray("channels", mcp.Description("Preferred channels"),
		mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("style", mcp.Description("Communication style note")),
)

var getPersonToolDef = mcp.NewTool("tend_person_get",
	mcp.WithDescription("Retrieve one person record."),
	mcp.WithString("key", mcp.Required(), mcp.Description("Stable key or display name")),
)

var listPeopleToolDef = mcp.NewTool("tend_people_list",
	mcp.WithDescription("List every person record."),
)

var listTasksToolDef = mcp.NewTool("tend_tasks_list",
	mcp.WithDescription("List tracked tasks, newest first."),
	mcp.WithString("status", mcp.Description("active, blocked, completed, or deferred; omit for all")),
)

var listReviewsToolDef = mcp.NewTool("tend_reviews_list",
	mcp.WithDescription("List review-queue entries with their clarifying questions."),
	mcp.WithString("status", mcp.Description("pending or completed; omit for all")),
)

var resolveReviewToolDef = mcp.NewTool("tend_review_resolve",
	mcp.WithDescription("Resolve one review entry by creating the held candidate as a record or dismissing it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Review entry id")),
	mcp.WithString("action", mcp.Required(), mcp.Description(`"create" or "dismiss"`)),
)

var addLinkToolDef = mcp.NewTool("tend_link_add",
	mcp.WithDescription("Tie a person to an initiative they care about."),
	mcp.WithString("person_key", mcp.Required(), mcp.Description("Stable key or display name")),
	mcp.WithString("initiative", mcp.Required(), mcp.Description("Initiative name")),
	mcp.WithString("level", mcp.Required(), mcp.Description("Interest level: critical, high, medium, or low")),
	mcp.WithString("required_cadence", mcp.Required(), mcp.Description("Update cadence the person expects")),
)

var listLinksToolDef = mcp.NewTool("tend_links_list",
	mcp.WithDescription("List a person's active interest links."),
	mcp.WithString("person_key", mcp.Required(), mcp.Description("Stable key or display name")),
)

var logToolDef = mcp.NewTool("tend_log",
	mcp.WithDescription("List discarded-candidate log entries, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return")),
)

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with tend tools registered. Tools listed
// in cfg.DisabledTools are excluded from registration.
func NewServer(store *db.Store, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tend",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(store, cfg)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(store *db.Store, cfg *config.Config, version string) error {
	s := NewServer(store, cfg, version)
	return server.ServeStdio(s)
}
