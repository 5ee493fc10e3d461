package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/signalworks/pulse/internal/observe"
	"github.com/signalworks/pulse/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerActiveSetResource(s *server.MCPServer, st store.Store) {
	resource := mcp.NewResource(
		"pulse://recommendations/active",
		"Active Recommendations",
		mcp.WithResourceDescription("All currently active recommendations across users, highest score first."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		sqlStore, ok := st.(*store.SQLiteStore)
		if !ok {
			return nil, fmt.Errorf("active set resource requires SQLiteStore")
		}

		rows, err := sqlStore.GetDB().QueryContext(ctx,
			`SELECT id, user_id, rec_type, title, score, expires_at
			 FROM recommendations
			 WHERE status = ?
			 ORDER BY score DESC, created_at, id
			 LIMIT 500`, store.RecommendationActive)
		if err != nil {
			return nil, fmt.Errorf("querying active set resource: %w", err)
		}
		defer rows.Close()

		type activeItem struct {
			ID        string `json:"id"`
			UserID    string `json:"user_id"`
			RecType   string `json:"type"`
			Title     string `json:"title"`
			Score     int    `json:"score"`
			ExpiresAt string `json:"expires_at"`
		}

		items := make([]activeItem, 0, 64)
		for rows.Next() {
			var item activeItem
			if err := rows.Scan(&item.ID, &item.UserID, &item.RecType, &item.Title, &item.Score, &item.ExpiresAt); err != nil {
				return nil, fmt.Errorf("scanning active set row: %w", err)
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating active set rows: %w", err)
		}

		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling active set: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func registerStatsResource(s *server.MCPServer, observer *observe.Engine) {
	resource := mcp.NewResource(
		"pulse://stats",
		"Pipeline Stats",
		mcp.WithResourceDescription("Opportunity pipeline counts, conversion rate, active-set size, and engagement volume."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		report, err := observer.Snapshot(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("stats resource: %w", err)
		}

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling stats: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
