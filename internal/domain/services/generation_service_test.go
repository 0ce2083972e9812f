package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/extractor"
	"github.com/kjaylee/contentforge/internal/generator"
	"github.com/kjaylee/contentforge/internal/generator/providers"
)

type fakeProviderClient struct {
	reply      string
	tokens     int
	configured bool
}

func (f *fakeProviderClient) Complete(_ context.Context, _, _ string, _ int) (*providers.Completion, error) {
	return &providers.Completion{Text: f.reply, TokensUsed: f.tokens}, nil
}

func (f *fakeProviderClient) Name() string     { return "fake" }
func (f *fakeProviderClient) Configured() bool { return f.configured }

type fakeExtractor struct {
	result *extractor.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*extractor.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGenerationRepo struct {
	created []*models.Generation
	listed  []*models.Generation
}

func (f *fakeGenerationRepo) Create(_ context.Context, generation *models.Generation) error {
	f.created = append(f.created, generation)
	return nil
}

func (f *fakeGenerationRepo) ListByUserID(_ context.Context, _ string, _, _ int) ([]*models.Generation, error) {
	return f.listed, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordGeneration(string)           {}
func (nopRecorder) RecordPlatformOutputs(int)         {}
func (nopRecorder) RecordTokens(int)                  {}
func (nopRecorder) RecordFanoutDuration(time.Duration) {}
func (nopRecorder) RecordExtraction(bool)             {}

func longText(n int) string {
	return strings.Repeat("글", n)
}

type generationFixture struct {
	service *GenerationService
	repo    *fakeGenerationRepo
	ext     *fakeExtractor
	usage   *UsageService
}

func newGenerationFixture(t *testing.T, client providers.Client) *generationFixture {
	t.Helper()

	repo := &fakeGenerationRepo{}
	ext := &fakeExtractor{result: &extractor.Result{
		Document: models.SourceDocument{
			Text:      longText(200),
			Title:     "Extracted title",
			OriginURL: "https://example.com/article",
		},
	}}
	usage := newTestUsageService(&stubSubRepo{})

	return &generationFixture{
		service: NewGenerationService(generator.New(client, testLogger()), ext, usage, repo, nopRecorder{}, testLogger()),
		repo:    repo,
		ext:     ext,
		usage:   usage,
	}
}

func configuredClient() *fakeProviderClient {
	return &fakeProviderClient{reply: "A fine post. #golang", tokens: 10, configured: true}
}

func TestGenerateRejectsUnconfiguredBackend(t *testing.T) {
	fx := newGenerationFixture(t, &fakeProviderClient{configured: false})

	_, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Text:      longText(100),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	assert.ErrorIs(t, err, models.ErrNotConfigured)
}

func TestGenerateRejectsShortText(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Text:      longText(49),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGenerateAcceptsFiftyCharText(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	resp, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Text:      longText(50),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceTypeText, resp.Source.Type)
	assert.Equal(t, 50, resp.Source.TextLength)
}

func TestGenerateRequiresSource(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGenerateRequiresPlatforms(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Text: longText(100),
	})

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGenerateRejectsOnlyUnknownPlatforms(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Text:      longText(100),
		Platforms: []models.Platform{"myspace", "orkut"},
	})

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGenerateTruncatesPlatformsForFreeTier(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	resp, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Text: longText(100),
		Platforms: []models.Platform{
			models.PlatformTwitter, models.PlatformLinkedIn,
			models.PlatformInstagram, models.PlatformFacebook,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []models.Platform{
		models.PlatformTwitter, models.PlatformLinkedIn, models.PlatformInstagram,
	}, resp.Platforms)
	assert.Len(t, resp.Outputs, 3)
}

func TestGeneratePrefersURLOverText(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	resp, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		URL:       "https://example.com/article",
		Text:      longText(100),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, fx.ext.calls)
	assert.Equal(t, models.SourceTypeURL, resp.Source.Type)
	assert.Equal(t, "Extracted title", resp.Source.Title)
}

func TestGeneratePropagatesExtractionFailure(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())
	fx.ext.err = models.ErrContentTooShort

	_, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		URL:       "https://example.com/article",
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	assert.ErrorIs(t, err, models.ErrContentTooShort)
}

func TestGenerateDeniesExhaustedQuota(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())
	caller := models.Caller{IP: "203.0.113.7"}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := fx.usage.Reserve(ctx, caller)
		require.NoError(t, err)
	}

	_, err := fx.service.Generate(ctx, caller, &GenerateRequest{
		Text:      longText(100),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
	require.NotNil(t, quotaErr.Status)
	assert.Equal(t, int64(0), quotaErr.Status.Remaining)
	// Denied requests never reach the history store.
	assert.Empty(t, fx.repo.created)
}

func TestGenerateChargesQuotaOnSuccess(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())
	caller := models.Caller{IP: "203.0.113.7"}

	resp, err := fx.service.Generate(context.Background(), caller, &GenerateRequest{
		Text:      longText(100),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Usage.Used)
	assert.Equal(t, int64(4), resp.Usage.Remaining)

	status, err := fx.usage.Status(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Used)
}

func TestGenerateReleasesQuotaOnExtractionFailure(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())
	fx.ext.err = models.ErrContentTooShort
	caller := models.Caller{IP: "203.0.113.7"}

	_, err := fx.service.Generate(context.Background(), caller, &GenerateRequest{
		URL:       "https://example.com/article",
		Platforms: []models.Platform{models.PlatformTwitter},
	})
	require.Error(t, err)

	status, err := fx.usage.Status(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.Used, "a failed extraction never consumes quota")
}

func TestGenerateReleasesQuotaOnValidationFailure(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())
	caller := models.Caller{IP: "203.0.113.7"}

	_, err := fx.service.Generate(context.Background(), caller, &GenerateRequest{
		Text:      longText(49),
		Platforms: []models.Platform{models.PlatformTwitter},
	})
	require.Error(t, err)

	status, err := fx.usage.Status(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.Used)
}

func TestGeneratePersistsHistoryForAuthenticatedCaller(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.Generate(context.Background(), models.Caller{UserID: "user-1"}, &GenerateRequest{
		Text:      longText(100),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	require.NoError(t, err)
	require.Len(t, fx.repo.created, 1)
	row := fx.repo.created[0]
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, models.SourceTypeText, row.SourceType)
	assert.Len(t, row.Outputs, 1)
}

func TestGenerateSkipsHistoryForAnonymousCaller(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.Generate(context.Background(), models.Caller{IP: "203.0.113.7"}, &GenerateRequest{
		Text:      longText(100),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	require.NoError(t, err)
	assert.Empty(t, fx.repo.created)
}

func TestGenerateCapsPersistedSnapshot(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.Generate(context.Background(), models.Caller{UserID: "user-1"}, &GenerateRequest{
		Text:      longText(9000),
		Platforms: []models.Platform{models.PlatformTwitter},
	})

	require.NoError(t, err)
	require.Len(t, fx.repo.created, 1)
	assert.Len(t, []rune(fx.repo.created[0].SourceText), models.SourceSnapshotLimit)
}

func TestHistoryRequiresAuthentication(t *testing.T) {
	fx := newGenerationFixture(t, configuredClient())

	_, err := fx.service.History(context.Background(), models.Caller{IP: "203.0.113.7"}, 10, 0)

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.False(t, errors.Is(err, models.ErrQuotaExceeded))
}
