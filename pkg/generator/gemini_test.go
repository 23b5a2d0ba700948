package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shouni/gemini-image-kit/ports"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

type fakePanelGenerator struct {
	requests []ports.ImagePanelRequest
	resp     *ports.ImageResponse
	err      error
}

func (f *fakePanelGenerator) GenerateMangaPanel(_ context.Context, req ports.ImagePanelRequest) (*ports.ImageResponse, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func TestNewGeminiImageService_RequiresGenerator(t *testing.T) {
	if _, err := NewGeminiImageService(nil, GeminiOptions{Model: "m"}); err == nil {
		t.Error("nil の PanelGenerator でエラーになりませんでした")
	}
	if _, err := NewGeminiImageService(&fakePanelGenerator{}, GeminiOptions{}); err == nil {
		t.Error("モデル名が空でもエラーになりませんでした")
	}
}

func TestGeminiImageService_Generate(t *testing.T) {
	fake := &fakePanelGenerator{resp: &ports.ImageResponse{Data: []byte("not-a-real-png"), MimeType: "image/jpeg", UsedSeed: 77}}
	svc, err := NewGeminiImageService(fake, GeminiOptions{Model: "gemini-test-image", ImageSize: "2K", SystemPrompt: "sys", NegativePrompt: "neg"})
	if err != nil {
		t.Fatal(err)
	}

	prompt := "Subject: a fox, Style: abstract. Output Specs: 16:9 aspect ratio, 3840x2160"
	h, err := svc.Generate(context.Background(), prompt, domain.AspectRatio16x9)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("リクエスト数が不正です: %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.Prompt != prompt {
		t.Errorf("プロンプトが加工されています: %q", req.Prompt)
	}
	if req.AspectRatio != "16:9" || req.SystemPrompt != "sys" || req.NegativePrompt != "neg" {
		t.Errorf("リクエスト内容が不正です: %+v", req)
	}
	if req.Model != "gemini-test-image" || req.ImageSize != "2K" {
		t.Errorf("モデル設定がリクエストに反映されていません: model=%q size=%q", req.Model, req.ImageSize)
	}
	if req.Image.ReferenceURL != "" || req.Image.FileAPIURI != "" {
		t.Error("参照画像は送信しない想定です")
	}
	if req.Seed == nil || *req.Seed != SeedFromPrompt(prompt) {
		t.Error("シードがプロンプトから決定されていません")
	}

	if h.Seed != 77 || h.MimeType != "image/jpeg" || h.Prompt != prompt {
		t.Errorf("ハンドルの内容が不正です: %+v", h)
	}
	if !strings.HasPrefix(h.URI, "data:image/jpeg;base64,") {
		t.Errorf("URI が data URI ではありません: %s", h.URI)
	}

	// バックエンドの応答バッファを書き換えてもハンドルは影響を受けないこと
	fake.resp.Data[0] = 'X'
	if h.Data[0] != 'n' {
		t.Error("応答バッファが共有されています")
	}
}

func TestGeminiImageService_Failures(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		ratio  domain.AspectRatio
		fake   *fakePanelGenerator
		calls  int
		target error
	}{
		{"バックエンドのエラー", "a fox", domain.AspectRatio16x9, &fakePanelGenerator{err: errors.New("quota exceeded")}, 1, ErrGeneration},
		{"空の応答", "a fox", domain.AspectRatio16x9, &fakePanelGenerator{resp: &ports.ImageResponse{}}, 1, ErrGeneration},
		{"空のプロンプト", "  ", domain.AspectRatio16x9, &fakePanelGenerator{}, 0, ErrEmptyPrompt},
		{"未対応のアスペクト比", "a fox", domain.AspectRatio("3:4"), &fakePanelGenerator{}, 0, ErrUnsupportedAspectRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := NewGeminiImageService(tt.fake, GeminiOptions{Model: "m"})
			h, err := svc.Generate(context.Background(), tt.prompt, tt.ratio)
			if h != nil {
				t.Error("失敗時にハンドルが返されました")
			}
			var ge *GenerationError
			if !errors.As(err, &ge) || !errors.Is(err, tt.target) {
				t.Fatalf("GenerationError(%v) を期待しました: %v", tt.target, err)
			}
			if len(tt.fake.requests) != tt.calls {
				t.Errorf("バックエンド呼び出し回数: 期待 %d, 実際 %d", tt.calls, len(tt.fake.requests))
			}
		})
	}
}
