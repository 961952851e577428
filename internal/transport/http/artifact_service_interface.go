package http

import (
	"context"

	"gdra/internal/operations"
	"gdra/internal/services"
	"gdra/pkg/contracts/domain"
)

// ArtifactServiceInterface defines the interface for artifact reads
type ArtifactServiceInterface interface {
	Manifest(ctx context.Context) (*operations.RunManifest, error)
	DatasetFile(ctx context.Context) (string, operations.ArtifactInfo, error)
	Records(ctx context.Context, page, perPage int) (*services.RecordPage, error)
	CoverageMatrix(ctx context.Context) ([]domain.CoverageRow, error)
	ValidationReport(ctx context.Context) (string, error)
	VerifyArtifacts(ctx context.Context) ([]services.ArtifactVerification, error)
}
