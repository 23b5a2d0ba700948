package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/gemini-image-kit/ports"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// PanelGenerator は gemini-image-kit の単体画像生成器が満たす契約です。
type PanelGenerator interface {
	GenerateMangaPanel(ctx context.Context, req ports.ImagePanelRequest) (*ports.ImageResponse, error)
}

// GeminiOptions は Gemini へのリクエストに付与する固定の指示です。
type GeminiOptions struct {
	Model          string // 画像生成モデル名 (必須)
	ImageSize      string // "1K" / "2K" / "4K"。空ならモデルの既定値
	SystemPrompt   string
	NegativePrompt string
}

// GeminiImageService は gemini-image-kit を介して実際に画像を生成する ImageService です。
// プロンプトは加工せずにそのまま送信します。
type GeminiImageService struct {
	generator PanelGenerator
	opts      GeminiOptions
}

// NewGeminiImageService は GeminiImageService を生成します。
func NewGeminiImageService(gen PanelGenerator, opts GeminiOptions) (*GeminiImageService, error) {
	if gen == nil {
		return nil, fmt.Errorf("PanelGenerator は必須です")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("画像生成モデル名は必須です")
	}
	return &GeminiImageService{generator: gen, opts: opts}, nil
}

// Generate は Gemini に画像生成を依頼し、結果をハンドルに詰めて返します。
func (s *GeminiImageService) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error) {
	if _, _, err := checkAspectRatio(prompt, ratio); err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, newGenerationError(prompt, ratio, ErrEmptyPrompt)
	}

	seed := SeedFromPrompt(prompt)
	logger := slog.With("model", s.opts.Model, "aspect_ratio", string(ratio), "seed", seed)
	logger.InfoContext(ctx, "Starting image generation")

	startTime := time.Now()
	resp, err := s.generator.GenerateMangaPanel(ctx, ports.ImagePanelRequest{
		GenerationOptions: ports.GenerationOptions{
			Model:          s.opts.Model,
			Prompt:         prompt,
			SystemPrompt:   s.opts.SystemPrompt,
			NegativePrompt: s.opts.NegativePrompt,
			AspectRatio:    string(ratio),
			ImageSize:      s.opts.ImageSize,
			Seed:           &seed,
		},
	})
	if err != nil {
		logger.ErrorContext(ctx, "Image generation failed", "error", err)
		return nil, newGenerationError(prompt, ratio, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, newGenerationError(prompt, ratio, fmt.Errorf("バックエンドが空の画像を返しました"))
	}

	mimeType := resp.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	handle := &domain.ImageHandle{
		URI:         fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(resp.Data)),
		MimeType:    mimeType,
		AspectRatio: ratio,
		Data:        bytes.Clone(resp.Data),
		Seed:        resp.UsedSeed,
		Prompt:      prompt,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(resp.Data)); err == nil {
		handle.Width, handle.Height = cfg.Width, cfg.Height
	}
	if handle.Seed == 0 {
		handle.Seed = seed
	}

	logger.InfoContext(ctx, "Image generation completed",
		"duration", time.Since(startTime).Round(time.Millisecond),
		"mime_type", mimeType,
		"bytes", len(resp.Data),
	)
	return handle, nil
}
