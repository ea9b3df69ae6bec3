package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mgonzalezcanudas/print3dhood/internal/config"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/repository"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/service"
)

// ModelUseCase drives the full pipeline for one request: validate,
// fetch, compose, then extrude-and-package or project a preview.
type ModelUseCase interface {
	Generate(ctx context.Context, req *model.ModelRequest) (*model.ModelArtifact, error)
	Preview(ctx context.Context, req *model.ModelRequest) (*model.PreviewResponse, error)
}

type modelUseCaseImpl struct {
	cfg       *config.Settings
	source    repository.FeatureSource
	composer  *service.Composer
	extruder  *service.Extruder
	packager  *service.Packager
	projector *service.PreviewProjector
	log       *zap.Logger
}

// NewModelUseCase wires the pipeline stages together.
func NewModelUseCase(
	cfg *config.Settings,
	source repository.FeatureSource,
	composer *service.Composer,
	extruder *service.Extruder,
	packager *service.Packager,
	projector *service.PreviewProjector,
	log *zap.Logger,
) ModelUseCase {
	return &modelUseCaseImpl{
		cfg:       cfg,
		source:    source,
		composer:  composer,
		extruder:  extruder,
		packager:  packager,
		projector: projector,
		log:       log,
	}
}

func (u *modelUseCaseImpl) Generate(ctx context.Context, req *model.ModelRequest) (*model.ModelArtifact, error) {
	env, set, err := u.compose(ctx, req)
	if err != nil {
		return nil, err
	}
	solids, err := u.extruder.ExtrudeAll(set)
	if err != nil {
		return nil, err
	}
	artifact, err := u.packager.Package(req, env, set, solids)
	if err != nil {
		return nil, err
	}
	u.log.Info("model generated",
		zap.String("id", artifact.ID),
		zap.Float64("radius_m", req.RadiusMeters),
		zap.Int("buildings", artifact.Metadata.BuildingCount),
		zap.Int("blobs", len(artifact.Layers)),
	)
	return artifact, nil
}

func (u *modelUseCaseImpl) Preview(ctx context.Context, req *model.ModelRequest) (*model.PreviewResponse, error) {
	_, set, err := u.compose(ctx, req)
	if err != nil {
		return nil, err
	}
	return u.projector.Project(set), nil
}

// compose runs the shared validate/fetch/compose front half.
func (u *modelUseCaseImpl) compose(ctx context.Context, req *model.ModelRequest) (*model.Environment, *model.LayerSet, error) {
	if err := u.validate(req); err != nil {
		return nil, nil, err
	}
	raw, err := u.source.Fetch(ctx, req.Center(), req.RadiusMeters, u.cfg.BasePaddingM)
	if err != nil {
		return nil, nil, err
	}
	return u.composer.Compose(req, raw)
}

// validate rejects bad requests before any upstream traffic happens.
func (u *modelUseCaseImpl) validate(req *model.ModelRequest) error {
	if req.Latitude < -90 || req.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.4f out of range [-90, 90]", model.ErrInvalidRequest, req.Latitude)
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.4f out of range [-180, 180]", model.ErrInvalidRequest, req.Longitude)
	}
	if req.RadiusMeters < u.cfg.MinRadiusM || req.RadiusMeters > u.cfg.MaxRadiusM {
		return fmt.Errorf("%w: radius %.1f out of range [%.0f, %.0f]",
			model.ErrInvalidRequest, req.RadiusMeters, u.cfg.MinRadiusM, u.cfg.MaxRadiusM)
	}
	for _, format := range req.Formats {
		if !u.cfg.FormatAllowed(format) {
			return fmt.Errorf("%w: unsupported format %q", model.ErrInvalidRequest, format)
		}
	}
	return nil
}
