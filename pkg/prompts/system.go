package prompts

import (
	"fmt"
	"strings"
)

const (
	// ArtDirectorInstruction は画像生成モデルに渡すシステム指示の基本部分です。
	ArtDirectorInstruction = "You are a senior concept artist preparing key visuals for an art director's briefing deck. Render exactly what the brief describes as a single cinematic 16:9 frame."

	// RenderingRules はスライド用のキービジュアルとして崩れないための描画ルールです。
	RenderingRules = `### RENDERING RULES ###
- FRAME: One continuous scene filling the full 16:9 canvas. No borders, no panels, no collage.
- TEXT: No captions, logos, watermarks or lettering of any kind.`

	// NegativePrompt はスライド画像から排除したい要素です。
	NegativePrompt = "text, letters, watermark, signature, logo, caption, frame, border, split screen, collage, low quality, blurry, distorted, bad anatomy"
)

// BuildSystemPrompt は基本指示と描画ルールに、任意のスタイル指定を加えたシステムプロンプトを返します。
func BuildSystemPrompt(styleSuffix string) string {
	parts := []string{ArtDirectorInstruction, RenderingRules}
	if s := strings.TrimSpace(styleSuffix); s != "" {
		parts = append(parts, fmt.Sprintf("### HOUSE STYLE ###\n%s", s))
	}
	return strings.Join(parts, "\n\n")
}
