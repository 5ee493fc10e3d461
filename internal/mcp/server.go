// Package mcp provides a Model Context Protocol server for Pulse.
//
// It exposes the engine's operations (call intake, classification,
// scoring passes, opportunity lifecycle, engagement feedback) as MCP
// tools, and the active recommendation set plus pipeline stats as MCP
// resources, over stdio transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/signalworks/pulse/internal/feedback"
	"github.com/signalworks/pulse/internal/ingest"
	"github.com/signalworks/pulse/internal/observe"
	"github.com/signalworks/pulse/internal/profile"
	"github.com/signalworks/pulse/internal/recommend"
	"github.com/signalworks/pulse/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store    store.Store
	Services []string // known service names for topic detection
	Options  recommend.Options
	Version  string
}

// dbMu serializes tool calls that touch the database. The mcp-go library
// dispatches handlers concurrently via goroutines, and SQLite supports
// only one writer at a time.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all Pulse tools and
// resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Pulse",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	intake := ingest.NewEngine(cfg.Store, cfg.Services)
	passEngine := recommend.NewEngine(cfg.Store, cfg.Options)
	channel := feedback.NewChannel(cfg.Store)
	observer := observe.NewEngine(cfg.Store)

	registerClassifyTool(s, intake)
	registerCallTool(s, intake)
	registerRecommendTool(s, passEngine)
	registerOpportunitiesTool(s, cfg.Store)
	registerOpportunityUpdateTool(s, cfg.Store)
	registerFeedbackTool(s, channel)

	registerActiveSetResource(s, cfg.Store)
	registerStatsResource(s, observer)

	return s
}

func registerClassifyTool(s *server.MCPServer, intake *ingest.Engine) {
	tool := mcp.NewTool("pulse_classify",
		mcp.WithDescription("Classify a call transcript into intent, urgency, and topic without persisting anything. Empty transcripts classify as a missed call."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("transcript",
			mcp.Description("Raw call transcript. May be empty for missed calls."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcript, _ := req.RequireString("transcript")
		sig := intake.Classify(transcript)
		data, _ := json.MarshalIndent(sig, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerCallTool(s *server.MCPServer, intake *ingest.Engine) {
	tool := mcp.NewTool("pulse_call",
		mcp.WithDescription("Record an inbound call: classify the transcript, estimate its value from the business price range, and persist a pending opportunity."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Owner of the resulting opportunity"),
		),
		mcp.WithString("transcript",
			mcp.Description("Raw call transcript. Empty = missed call."),
		),
		mcp.WithNumber("price_min",
			mcp.Description("Business price range minimum. Omit both bounds when pricing is unknown."),
		),
		mcp.WithNumber("price_max",
			mcp.Description("Business price range maximum."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}
		transcript, _ := req.RequireString("transcript")

		bp := profile.BusinessProfile{}
		min, minErr := req.RequireFloat("price_min")
		max, maxErr := req.RequireFloat("price_max")
		if minErr == nil && maxErr == nil {
			bp.PriceRange = &profile.PriceRange{Min: min, Max: max}
		}

		o, err := intake.HandleCall(ctx, ingest.CallEvent{UserID: userID, Transcript: transcript}, bp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("call intake error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(o, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerRecommendTool(s *server.MCPServer, engine *recommend.Engine) {
	tool := mcp.NewTool("pulse_recommend",
		mcp.WithDescription("Run a full scoring pass for a user: generate candidates from the opted-in focus areas, score them against the business profile, select by complexity tolerance and frequency cap, and persist the active set (superseding older duplicates)."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("User to run the pass for"),
		),
		mcp.WithString("industry",
			mcp.Description("Business industry, e.g. 'plumbing', 'hvac'. Empty widens applicability."),
		),
		mcp.WithString("business_size",
			mcp.Description("Business size: solo, small, medium, or large."),
		),
		mcp.WithNumber("chaos_indicator",
			mcp.Description("Self-reported overwhelm 0-10. Above 7 boosts simple actions; below 4 boosts advanced ones."),
		),
		mcp.WithString("focus_areas",
			mcp.Required(),
			mcp.Description("Comma-separated focus areas, e.g. 'Revenue Growth, Marketing & Sales'"),
		),
		mcp.WithString("frequency",
			mcp.Description("Feed refresh frequency: hourly, daily, weekly, or monthly (default: weekly)"),
			mcp.Enum("hourly", "daily", "weekly", "monthly"),
		),
		mcp.WithString("complexity_tolerance",
			mcp.Description("Ceiling on action complexity: simple, moderate, or advanced (default: moderate)"),
			mcp.Enum("simple", "moderate", "advanced"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}
		areasRaw, err := req.RequireString("focus_areas")
		if err != nil {
			return mcp.NewToolResultError("focus_areas is required"), nil
		}

		bp := profile.BusinessProfile{}
		if v, err := req.RequireString("industry"); err == nil {
			bp.Industry = strings.ToLower(strings.TrimSpace(v))
		}
		if v, err := req.RequireString("business_size"); err == nil {
			bp.BusinessSize = strings.ToLower(strings.TrimSpace(v))
		}
		if v, err := req.RequireFloat("chaos_indicator"); err == nil {
			bp.ChaosIndicator = int(v)
		}

		prefs := profile.UserPreferences{
			Frequency:           profile.ParseFrequency(getString(req, "frequency")),
			ComplexityTolerance: profile.ParseComplexity(getString(req, "complexity_tolerance")),
		}
		for _, a := range strings.Split(areasRaw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				prefs.FocusAreas = append(prefs.FocusAreas, a)
			}
		}

		report, err := engine.RunPass(ctx, userID, bp, prefs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scoring pass error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(report, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerOpportunitiesTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("pulse_opportunities",
		mcp.WithDescription("List a user's call opportunities, newest first, optionally filtered by status."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Opportunity owner"),
		),
		mcp.WithString("status",
			mcp.Description("Filter by status"),
			mcp.Enum("pending", "contacted", "converted", "dismissed"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 20, max: 100)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}

		opts := store.ListOpts{Limit: 20}
		if v, err := req.RequireString("status"); err == nil && v != "" {
			opts.Status = v
		}
		if v, err := req.RequireFloat("limit"); err == nil {
			limit := int(v)
			if limit > 100 {
				limit = 100
			}
			if limit > 0 {
				opts.Limit = limit
			}
		}

		list, err := st.ListOpportunities(ctx, userID, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(list, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerOpportunityUpdateTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("pulse_opportunity_update",
		mcp.WithDescription("Transition an opportunity through its lifecycle: pending → contacted/dismissed, contacted → converted/dismissed. Invalid transitions fail and leave the record unchanged."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Opportunity ID"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("Target status"),
			mcp.Enum("contacted", "converted", "dismissed"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		status, err := req.RequireString("status")
		if err != nil {
			return mcp.NewToolResultError("status is required"), nil
		}

		if err := st.TransitionOpportunity(ctx, id, status); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("transition error: %v", err)), nil
		}
		o, err := st.GetOpportunity(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reload error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(o, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerFeedbackTool(s *server.MCPServer, channel *feedback.Channel) {
	tool := mcp.NewTool("pulse_feedback",
		mcp.WithDescription("Record user engagement with a recommendation. Implemented/dismissed also apply the matching status transition; rated only logs."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("recommendation_id",
			mcp.Required(),
			mcp.Description("Recommendation the user reacted to"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("The reaction"),
			mcp.Enum("implemented", "dismissed", "rated"),
		),
		mcp.WithNumber("rating",
			mcp.Description("1-5, required when action is 'rated'"),
		),
		mcp.WithNumber("seconds_on_item",
			mcp.Description("Time the user spent on the item, if known"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		recID, err := req.RequireString("recommendation_id")
		if err != nil {
			return mcp.NewToolResultError("recommendation_id is required"), nil
		}
		action, err := req.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError("action is required"), nil
		}

		event := &store.EngagementEvent{RecommendationID: recID, Action: action}
		if v, err := req.RequireFloat("rating"); err == nil {
			event.Rating = int(v)
		}
		if v, err := req.RequireFloat("seconds_on_item"); err == nil {
			event.SecondsOnItem = int(v)
		}

		if err := channel.Apply(ctx, event); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("feedback error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(event, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func getString(req mcp.CallToolRequest, key string) string {
	v, _ := req.RequireString(key)
	return v
}
