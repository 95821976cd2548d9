package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"ourxmas-backend/internal/deploy"
	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
	"ourxmas-backend/internal/render"
)

type FormValidator interface {
	Validate(ctx context.Context, form *models.Form) (*models.GenerationRequest, error)
}

type PageRenderer interface {
	RenderWithImages(cfg render.Config, images []string) (string, error)
}

type ArtifactDeployer interface {
	Ready(target models.DeployTarget) error
	ImagePaths(target models.DeployTarget, images []models.ImageAsset) []string
	AudioPath(target models.DeployTarget, audio *models.AudioAsset, images []models.ImageAsset) string
	Deploy(ctx context.Context, b deploy.Bundle) (string, error)
}

type GenerationResult struct {
	ProjectID      string
	PublicURL      string
	GenerationTime time.Duration
}

// GenerationService runs a generate request end to end.
type GenerationService struct {
	validator FormValidator
	gate      *PaymentGate
	renderer  PageRenderer
	deployer  ArtifactDeployer
	log       *logger.Logger
}

func NewGenerationService(v FormValidator, gate *PaymentGate, r PageRenderer, d ArtifactDeployer, log *logger.Logger) *GenerationService {
	return &GenerationService{
		validator: v,
		gate:      gate,
		renderer:  r,
		deployer:  d,
		log:       log.With("component", "GenerationService"),
	}
}

// Validate checks the form without touching the ledger or any store.
func (s *GenerationService) Validate(ctx context.Context, form *models.Form) (*models.GenerationRequest, error) {
	return s.validator.Validate(ctx, form)
}

func (s *GenerationService) Generate(ctx context.Context, form *models.Form) (*GenerationResult, error) {
	start := time.Now()
	generationID := uuid.NewString()

	req, err := s.validator.Validate(ctx, form)
	if err != nil {
		return nil, err
	}
	log := s.log.With("generation_id", generationID, "project_id", req.ProjectName, "target", req.DeployTo)

	tx, err := s.gate.Check(ctx, req.ProjectName)
	if err != nil {
		log.Info("generation rejected by payment gate", "reason", err.Error())
		return nil, err
	}

	if err := s.deployer.Ready(req.DeployTo); err != nil {
		return nil, err
	}

	if err := s.gate.Claim(ctx, req.ProjectName, tx); err != nil {
		log.Info("deployment claim refused", "transaction_id", tx.ID, "reason", err.Error())
		return nil, err
	}

	url, err := s.renderAndDeploy(ctx, req)
	if err != nil {
		// The request context may already be cancelled here.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		s.gate.Release(releaseCtx, tx)
		cancel()
		log.Error("generation failed", "error", err)
		return nil, err
	}

	completeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	s.gate.Complete(completeCtx, tx, url)
	cancel()

	elapsed := time.Since(start)
	log.Info("generation complete", "public_url", url, "images", len(req.BodyImages), "duration_ms", elapsed.Milliseconds())

	return &GenerationResult{
		ProjectID:      req.ProjectName,
		PublicURL:      url,
		GenerationTime: elapsed,
	}, nil
}

func (s *GenerationService) renderAndDeploy(ctx context.Context, req *models.GenerationRequest) (string, error) {
	cfg := render.ConfigFromRequest(req)
	cfg.AudioSrc = s.deployer.AudioPath(req.DeployTo, req.Music, req.BodyImages)

	html, err := s.renderer.RenderWithImages(cfg, s.deployer.ImagePaths(req.DeployTo, req.BodyImages))
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	return s.deployer.Deploy(ctx, deploy.Bundle{
		ProjectID: req.ProjectName,
		Target:    req.DeployTo,
		HTML:      html,
		Images:    req.BodyImages,
		Audio:     req.Music,
	})
}
