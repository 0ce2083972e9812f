package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the service layer sees; the Prometheus wiring stays here.
type Recorder interface {
	RecordGeneration(outcome string)
	RecordPlatformOutputs(count int)
	RecordTokens(count int)
	RecordFanoutDuration(d time.Duration)
	RecordExtraction(success bool)
}

type Collector struct {
	generations     *prometheus.CounterVec
	platformOutputs prometheus.Counter
	tokens          prometheus.Counter
	fanoutDuration  prometheus.Histogram
	extractions     *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentforge_generations_total",
			Help: "Generation requests by outcome.",
		}, []string{"outcome"}),
		platformOutputs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentforge_platform_outputs_total",
			Help: "Successfully generated platform posts.",
		}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentforge_llm_tokens_total",
			Help: "Tokens consumed by the generation backend.",
		}),
		fanoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contentforge_generation_duration_seconds",
			Help:    "Wall-clock duration of the per-platform fan-out.",
			Buckets: prometheus.DefBuckets,
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentforge_extractions_total",
			Help: "URL extraction attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.generations,
		c.platformOutputs,
		c.tokens,
		c.fanoutDuration,
		c.extractions,
	)

	return c
}

func (c *Collector) RecordGeneration(outcome string) {
	c.generations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordPlatformOutputs(count int) {
	c.platformOutputs.Add(float64(count))
}

func (c *Collector) RecordTokens(count int) {
	c.tokens.Add(float64(count))
}

func (c *Collector) RecordFanoutDuration(d time.Duration) {
	c.fanoutDuration.Observe(d.Seconds())
}

func (c *Collector) RecordExtraction(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.extractions.WithLabelValues(result).Inc()
}
