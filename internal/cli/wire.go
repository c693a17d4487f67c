package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"quizforge/internal/app"
	"quizforge/internal/config"
	"quizforge/internal/extract"
	"quizforge/internal/infra/memory"
	redisinfra "quizforge/internal/infra/redis"
	"quizforge/internal/logger"
	"quizforge/internal/nlp"
	"quizforge/internal/render"
)

type components struct {
	source *extract.Source
	runner *app.Runner
	redis  *redis.Client
}

func (c *components) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
}

// wire builds the pipeline and runner. With a Redis address the run lock,
// statuses and extraction cache live in Redis, otherwise in process memory.
func wire(ctx context.Context, cfg config.Config, log *logger.Logger) (*components, error) {
	c := &components{}
	if cfg.Redis.Addr != "" {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.redis.Ping(pingCtx).Err(); err != nil {
			c.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	cacheTTL := config.TTLDuration(cfg.Redis.CacheTTL, time.Hour)
	var pdf extract.PDFExtractor = extract.NewDefaultChain(log)
	var registry app.RunRegistry
	if c.redis != nil {
		pdf = redisinfra.NewTextCache(c.redis, pdf, cacheTTL)
		registry = redisinfra.NewRunRegistry(c.redis,
			config.TTLDuration(cfg.Redis.LockTTL, 10*time.Minute),
			config.TTLDuration(cfg.Redis.StatusTTL, 24*time.Hour))
	} else {
		pdf = memory.NewTextCache(pdf, cacheTTL)
		registry = memory.NewRunRegistry()
	}

	c.source = extract.NewSource(extract.Options{
		UploadsDir:     cfg.Input.UploadsDir,
		DefaultPDF:     cfg.Input.DefaultPDF,
		PastedText:     cfg.Input.PastedText,
		LastUploadFile: cfg.Input.LastUploadFile,
		MaxTextChars:   cfg.Input.MaxTextChars,
	}, pdf, log)

	normalizer, err := nlp.NewDefaultNormalizer(log)
	if err != nil {
		c.Close()
		return nil, err
	}

	pipeline := app.NewPipeline(app.PipelineConfig{
		WorkDir:   cfg.Output.WorkDir,
		FinalName: cfg.Output.FinalName,
	}, c.source, normalizer, nlp.NewProseTagger(), newRenderer(cfg.Output.Format), log)
	c.runner = app.NewRunner(pipeline, registry, log)
	return c, nil
}

func newRenderer(format string) app.Renderer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "txt":
		return render.TextRenderer{}
	default:
		return render.NewPDFRenderer("")
	}
}
