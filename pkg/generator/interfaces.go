package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

var (
	// ErrGeneration は画像生成の失敗を示すセンチネルです。
	ErrGeneration = errors.New("image generation failed")
	// ErrUnsupportedAspectRatio は未対応のアスペクト比が要求されたことを示します。
	ErrUnsupportedAspectRatio = errors.New("unsupported aspect ratio")
	// ErrEmptyPrompt は空のプロンプトでバックエンドを呼び出そうとしたことを示します。
	ErrEmptyPrompt = errors.New("empty prompt")
)

// ImageService はプロンプトとアスペクト比から画像を生成する境界です。
// 実装は空や不正なプロンプトを受け取っても、*GenerationError を返すか有効なハンドルを返すかの
// どちらかでなければなりません。リトライはこの層では行いません。
type ImageService interface {
	Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error)
}

// ImageServiceFunc は関数を ImageService として扱うためのアダプターです。
type ImageServiceFunc func(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error)

// Generate は f を呼び出します。
func (f ImageServiceFunc) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error) {
	return f(ctx, prompt, ratio)
}

// GenerationError は画像バックエンドの失敗です。呼び出し側はスライドを変更せずに再試行できます。
type GenerationError struct {
	Prompt      string
	AspectRatio domain.AspectRatio
	Err         error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (aspect ratio %s): %v", ErrGeneration.Error(), e.AspectRatio, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// newGenerationError は err が既に *GenerationError ならそのまま返し、そうでなければ包みます。
func newGenerationError(prompt string, ratio domain.AspectRatio, err error) error {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return err
	}
	return &GenerationError{Prompt: prompt, AspectRatio: ratio, Err: err}
}

// checkAspectRatio は ratio が対応済みかを確認し、ピクセルサイズを返します。
func checkAspectRatio(prompt string, ratio domain.AspectRatio) (int, int, error) {
	w, h, ok := ratio.Dimensions()
	if !ok {
		return 0, 0, newGenerationError(prompt, ratio, fmt.Errorf("%w: %q", ErrUnsupportedAspectRatio, string(ratio)))
	}
	return w, h, nil
}
