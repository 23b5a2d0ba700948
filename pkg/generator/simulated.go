package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fogleman/gg"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

const (
	// PlaceholderScheme はシミュレーション画像の URI スキームです。
	PlaceholderScheme = "placeholder"

	placeholderBackground = "1E293B"
	placeholderForeground = "FFFFFF"
	placeholderCaption    = "Image for Prompt"
)

// SimulatedImageService は実際のバックエンドを呼ばずに、要求されたアスペクト比ちょうどの
// プレースホルダー PNG を返す ImageService です。
// 受け取ったプロンプトはハンドルの URI に埋め込まれ、DecodePlaceholderPrompt で復元できます。
type SimulatedImageService struct{}

// NewSimulatedImageService は SimulatedImageService を生成します。
func NewSimulatedImageService() *SimulatedImageService {
	return &SimulatedImageService{}
}

// Generate はプレースホルダー画像を決定論的に生成します。
func (s *SimulatedImageService) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, newGenerationError(prompt, ratio, err)
	}
	w, h, err := checkAspectRatio(prompt, ratio)
	if err != nil {
		return nil, err
	}

	data, err := renderPlaceholder(w, h, fmt.Sprintf("%s %s", ratio, placeholderCaption))
	if err != nil {
		return nil, newGenerationError(prompt, ratio, err)
	}

	slog.DebugContext(ctx, "Simulated image generated",
		slog.Int("width", w),
		slog.Int("height", h),
		slog.Int("prompt_length", len(prompt)),
	)

	return &domain.ImageHandle{
		URI:         placeholderURI(w, h, prompt),
		MimeType:    "image/png",
		Width:       w,
		Height:      h,
		AspectRatio: ratio,
		Data:        data,
		Seed:        SeedFromPrompt(prompt),
		Prompt:      prompt,
	}, nil
}

// renderPlaceholder は単色背景の中央にキャプションを描いた PNG を返します。
func renderPlaceholder(width, height int, caption string) ([]byte, error) {
	dc := gg.NewContext(width, height)
	dc.SetHexColor("#" + placeholderBackground)
	dc.Clear()

	dc.SetHexColor("#" + placeholderForeground)
	dc.DrawStringAnchored(caption, float64(width)/2, float64(height)/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func placeholderURI(width, height int, prompt string) string {
	q := url.Values{}
	q.Set("prompt", base64.RawURLEncoding.EncodeToString([]byte(prompt)))
	return fmt.Sprintf("%s://%dx%d/%s/%s?%s",
		PlaceholderScheme, width, height, placeholderBackground, placeholderForeground, q.Encode())
}

// DecodePlaceholderPrompt はプレースホルダー URI に埋め込まれたプロンプトを復元します。
func DecodePlaceholderPrompt(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("URIの解析に失敗しました: %w", err)
	}
	if !strings.EqualFold(u.Scheme, PlaceholderScheme) {
		return "", fmt.Errorf("プレースホルダー URI ではありません: %s", uri)
	}
	if !u.Query().Has("prompt") {
		return "", fmt.Errorf("prompt パラメータがありません: %s", uri)
	}
	raw, err := base64.RawURLEncoding.DecodeString(u.Query().Get("prompt"))
	if err != nil {
		return "", fmt.Errorf("プロンプトのデコードに失敗しました: %w", err)
	}
	return string(raw), nil
}
