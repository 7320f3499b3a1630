package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MalithGihan/mindmap-service/internal/config"
	"github.com/MalithGihan/mindmap-service/internal/fusion"
	"github.com/MalithGihan/mindmap-service/internal/ingest"
	"github.com/MalithGihan/mindmap-service/internal/ocr"
)

func newDispatcher(cfg config.Config, logger *zap.Logger) *ingest.Dispatcher {
	opener := &ingest.PdfcpuOpener{
		Rasterizer: &ingest.PdftoppmRasterizer{Binary: cfg.Extraction.PdftoppmPath},
		TempDir:    cfg.Extraction.TempDir,
	}
	var engine ingest.OCREngine
	if cfg.Extraction.OCREnabled {
		engine = &ocr.Tesseract{Languages: cfg.Extraction.OCRLanguages}
	}
	pdf := ingest.NewPDFExtractor(opener, engine, cfg.Extraction.RenderScale, logger)
	return ingest.NewDispatcher(pdf, logger, cfg.Extraction.Workers)
}

func newSynthesizer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*fusion.Synthesizer, fusion.Generator, error) {
	g := cfg.Generation
	pc := fusion.ProviderConfig{
		Provider:        g.Provider,
		Model:           g.Model,
		AnthropicAPIKey: g.AnthropicAPIKey,
		GeminiAPIKey:    g.GeminiAPIKey,
		OllamaURL:       g.OllamaURL,
	}
	gen, err := fusion.NewGenerator(ctx, pc)
	if err != nil {
		return nil, nil, err
	}

	opts := []fusion.Option{
		fusion.WithTimeout(g.Timeout),
		fusion.WithMaxTokens(g.MaxTokens),
		fusion.WithTemperature(g.Temperature),
		fusion.WithRetry(fusion.NewRetryPolicy(g.MaxRetries)),
		fusion.WithModel(pc.ResolveModel()),
	}
	if g.RequestsPerMin > 0 {
		opts = append(opts, fusion.WithRateLimit(rate.NewLimiter(rate.Every(time.Minute/time.Duration(g.RequestsPerMin)), 1)))
	}
	return fusion.NewSynthesizer(gen, logger, opts...), gen, nil
}
