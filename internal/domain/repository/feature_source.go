// Package repository declares the interfaces the domain layer needs
// from infrastructure.
package repository

import (
	"context"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// FeatureSource fetches raw vector features covering the square
// bounding box of side 2*(radiusM+paddingM) around center, reprojected
// into the request's LocalFrame.
type FeatureSource interface {
	Fetch(ctx context.Context, center model.GeoPoint, radiusM, paddingM float64) (*model.RawFeatureSet, error)
}
