package services

import (
	"context"
	"log/slog"

	"gdra/internal/infrastructure"
)

// Helper functions for artifact service logging using the centralized
// infrastructure logger

// logArtifactError logs an error in artifact service operations
func logArtifactError(ctx context.Context, action, message string, attrs ...slog.Attr) {
	logger := infrastructure.LoggerWithContext(ctx)

	// Add standard attributes
	allAttrs := []slog.Attr{
		slog.String("component", "artifact_service"),
		slog.String("action", action),
	}

	allAttrs = append(allAttrs, attrs...)

	logger.LogAttrs(ctx, slog.LevelError, message, allAttrs...)
}
