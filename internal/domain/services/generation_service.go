package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/repositories"
	"github.com/kjaylee/contentforge/internal/extractor"
	"github.com/kjaylee/contentforge/internal/generator"
	"github.com/kjaylee/contentforge/internal/metrics"
)

const (
	minTextLength = 50
	maxTextLength = 10000
)

// ArticleExtractor lets tests substitute the URL crawler.
type ArticleExtractor interface {
	Extract(ctx context.Context, rawURL string) (*extractor.Result, error)
}

// QuotaExceededError carries the usage numbers the caller needs to decide
// whether to upgrade or wait for the reset.
type QuotaExceededError struct {
	Status *UsageStatus
}

func (e *QuotaExceededError) Error() string {
	return models.ErrQuotaExceeded.Error()
}

func (e *QuotaExceededError) Unwrap() error {
	return models.ErrQuotaExceeded
}

type GenerateRequest struct {
	URL       string
	Text      string
	Platforms []models.Platform
	Language  string
}

type SourceInfo struct {
	Type       models.SourceType `json:"type"`
	URL        string            `json:"url,omitempty"`
	Title      string            `json:"title,omitempty"`
	TextLength int               `json:"textLength"`
}

type GenerateResponse struct {
	Source           SourceInfo               `json:"source"`
	Outputs          models.GenerationOutputs `json:"outputs"`
	Platforms        []models.Platform        `json:"platforms"`
	Usage            *UsageStatus             `json:"usage"`
	TokensUsed       int                      `json:"tokensUsed"`
	ProcessingTimeMs int64                    `json:"processingTimeMs"`
}

// GenerationService runs the whole request pipeline: quota reservation,
// validation, extraction, concurrent generation, and history persistence, in
// that order. The reservation is kept once generation runs and handed back on
// any earlier failure.
type GenerationService struct {
	generator      *generator.Generator
	extractor      ArticleExtractor
	usage          *UsageService
	generationRepo repositories.GenerationRepository
	metrics        metrics.Recorder
	logger         *slog.Logger
}

func NewGenerationService(
	gen *generator.Generator,
	ext ArticleExtractor,
	usage *UsageService,
	generationRepo repositories.GenerationRepository,
	collector metrics.Recorder,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		generator:      gen,
		extractor:      ext,
		usage:          usage,
		generationRepo: generationRepo,
		metrics:        collector,
		logger:         logger,
	}
}

func (s *GenerationService) Generate(ctx context.Context, caller models.Caller, req *GenerateRequest) (*GenerateResponse, error) {
	if !s.generator.Configured() {
		return nil, models.ErrNotConfigured
	}

	// Admission before any expensive work: a denied caller never costs us a
	// crawl or a model call. The slot is reserved atomically here and handed
	// back on any failure before generation runs.
	status, err := s.usage.Reserve(ctx, caller)
	if err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			s.metrics.RecordGeneration("quota_exceeded")
			return nil, &QuotaExceededError{Status: status}
		}
		return nil, fmt.Errorf("failed to check usage: %w", err)
	}

	honored, err := s.resolvePlatforms(status.Tier, req.Platforms)
	if err != nil {
		s.usage.Release(ctx, caller)
		return nil, err
	}

	doc, err := s.resolveSource(ctx, req)
	if err != nil {
		s.usage.Release(ctx, caller)
		return nil, err
	}

	language := "ko"
	if req.Language == "en" {
		language = "en"
	}

	start := time.Now()
	result := s.generator.Generate(ctx, *doc, honored, language)
	s.metrics.RecordFanoutDuration(time.Since(start))
	s.metrics.RecordPlatformOutputs(len(result.Outputs))
	s.metrics.RecordTokens(result.TokensUsed)

	if caller.Authenticated() {
		s.persistHistory(ctx, caller, req, doc, honored, result)
	}

	s.metrics.RecordGeneration("success")

	return &GenerateResponse{
		Source: SourceInfo{
			Type:       sourceTypeOf(req),
			URL:        doc.OriginURL,
			Title:      doc.Title,
			TextLength: len([]rune(doc.Text)),
		},
		Outputs:          result.Outputs,
		Platforms:        honored,
		Usage:            status,
		TokensUsed:       result.TokensUsed,
		ProcessingTimeMs: result.ProcessingTimeMs,
	}, nil
}

// History returns the caller's past generations, newest first.
func (s *GenerationService) History(ctx context.Context, caller models.Caller, limit, offset int) ([]*models.Generation, error) {
	if !caller.Authenticated() {
		return nil, models.NewValidationError("Sign in to view generation history.")
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.generationRepo.ListByUserID(ctx, caller.UserID, limit, offset)
}

func (s *GenerationService) resolvePlatforms(tier models.UserTier, requested []models.Platform) ([]models.Platform, error) {
	if len(requested) == 0 {
		return nil, models.NewValidationError("Select at least one platform.")
	}

	valid := models.FilterPlatforms(requested)
	if len(valid) == 0 {
		return nil, models.NewValidationError("Select at least one valid platform.")
	}

	return s.usage.LimitPlatforms(tier, valid), nil
}

func (s *GenerationService) resolveSource(ctx context.Context, req *GenerateRequest) (*models.SourceDocument, error) {
	if req.URL == "" && strings.TrimSpace(req.Text) == "" {
		return nil, models.NewValidationError("Provide a URL or text to convert.")
	}

	// Both present prefers the URL path.
	if req.URL != "" {
		result, err := s.extractor.Extract(ctx, req.URL)
		if err != nil {
			s.metrics.RecordExtraction(false)
			return nil, err
		}
		s.metrics.RecordExtraction(true)
		return &result.Document, nil
	}

	text := strings.TrimSpace(req.Text)
	runes := []rune(text)
	if len(runes) < minTextLength {
		return nil, models.NewValidationError("Text is too short. Enter at least %d characters.", minTextLength)
	}
	if len(runes) > maxTextLength {
		text = string(runes[:maxTextLength])
	}

	return &models.SourceDocument{Text: text}, nil
}

func (s *GenerationService) persistHistory(
	ctx context.Context,
	caller models.Caller,
	req *GenerateRequest,
	doc *models.SourceDocument,
	platforms []models.Platform,
	result *generator.Result,
) {
	snapshot := doc.Text
	if runes := []rune(snapshot); len(runes) > models.SourceSnapshotLimit {
		snapshot = string(runes[:models.SourceSnapshotLimit])
	}

	generation := &models.Generation{
		UserID:           caller.UserID,
		SourceType:       sourceTypeOf(req),
		SourceText:       snapshot,
		Outputs:          result.Outputs,
		Platforms:        platforms,
		TokensUsed:       result.TokensUsed,
		ProcessingTimeMs: result.ProcessingTimeMs,
	}
	if doc.OriginURL != "" {
		generation.SourceURL = &doc.OriginURL
	}
	if doc.Title != "" {
		generation.SourceTitle = &doc.Title
	}

	if err := s.generationRepo.Create(ctx, generation); err != nil {
		s.logger.Error("failed to persist generation history",
			slog.String("user_id", caller.UserID),
			slog.String("error", err.Error()),
		)
	}
}

func sourceTypeOf(req *GenerateRequest) models.SourceType {
	if req.URL != "" {
		return models.SourceTypeURL
	}
	return models.SourceTypeText
}
