package workflow

import (
	"context"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// SlideGenerator は、ホストから見た画像付きスライド生成の責務を定義します。
type SlideGenerator interface {
	Preview(values domain.VariableSet) (string, error)
	GenerateForSelected(ctx context.Context, values domain.VariableSet) (domain.Slide, error)
	GenerateForSlide(ctx context.Context, id domain.SlideID, values domain.VariableSet) (domain.Slide, error)
	GenerateBatch(ctx context.Context, jobs []Job) ([]domain.Slide, error)
}

var _ SlideGenerator = (*Studio)(nil)
