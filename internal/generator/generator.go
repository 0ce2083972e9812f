package generator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/generator/providers"
)

// Output-token ceiling per platform call.
const maxOutputTokens = 1000

// Per-platform deadline so one stalled backend call cannot hold the fan-out
// barrier indefinitely; a timed-out platform counts as a failed platform.
const defaultPlatformTimeout = 60 * time.Second

type Result struct {
	Outputs          models.GenerationOutputs
	TokensUsed       int
	ProcessingTimeMs int64
}

// Generator fans one source document out to the requested platforms
// concurrently and aggregates whatever succeeds.
type Generator struct {
	client          providers.Client
	logger          *slog.Logger
	platformTimeout time.Duration
}

func New(client providers.Client, logger *slog.Logger) *Generator {
	return &Generator{
		client:          client,
		logger:          logger,
		platformTimeout: defaultPlatformTimeout,
	}
}

// Configured reports whether the generation backend has credentials.
func (g *Generator) Configured() bool {
	return g.client.Configured()
}

// Generate runs one adapter call per platform concurrently and waits for all
// of them to settle. A failed platform is logged and omitted from the result;
// it never aborts its siblings.
func (g *Generator) Generate(ctx context.Context, doc models.SourceDocument, platforms []models.Platform, language string) *Result {
	start := time.Now()

	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		outputs     = make(models.GenerationOutputs, len(platforms))
		totalTokens int
	)

	for _, platform := range platforms {
		profile, ok := models.PlatformProfiles[platform]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(platform models.Platform, profile models.PlatformProfile) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, g.platformTimeout)
			defer cancel()

			prompt := BuildPlatformPrompt(doc, profile, language)
			completion, err := g.client.Complete(callCtx, systemPrompt, prompt, maxOutputTokens)
			if err != nil {
				g.logger.Warn("platform generation failed",
					slog.String("platform", string(platform)),
					slog.String("provider", g.client.Name()),
					slog.String("error", err.Error()),
				)
				return
			}

			output := ParseOutput(completion.Text, profile)

			mu.Lock()
			outputs[platform] = output
			totalTokens += completion.TokensUsed
			mu.Unlock()
		}(platform, profile)
	}

	wg.Wait()

	return &Result{
		Outputs:          outputs,
		TokensUsed:       totalTokens,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}
