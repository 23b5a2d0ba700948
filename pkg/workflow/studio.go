package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-briefing-kit/pkg/domain"
	"github.com/shouni/go-briefing-kit/pkg/generator"
	"github.com/shouni/go-briefing-kit/pkg/prompts"
)

// Studio はデッキ、プロンプトコンパイラ、画像生成サービスを束ね、
// 「変数の収集 → コンパイル → 画像生成 → スライドへの添付」の流れを提供します。
// デッキへの操作はすべて Studio の中で直列化されます。画像生成中はロックを保持しません。
type Studio struct {
	mu          sync.Mutex
	deck        *domain.Deck
	compiler    *prompts.Compiler
	images      generator.ImageService
	timeout     time.Duration
	concurrency int
}

// StudioOption は Studio の生成オプションです。
type StudioOption func(*Studio)

// WithRequestTimeout は1回の画像生成に掛けられる時間の上限を設定します。0 以下なら上限なしです。
func WithRequestTimeout(d time.Duration) StudioOption {
	return func(s *Studio) {
		s.timeout = d
	}
}

// WithBatchConcurrency は GenerateBatch の同時実行数を設定します。
func WithBatchConcurrency(n int) StudioOption {
	return func(s *Studio) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewStudio は Studio を生成します。
func NewStudio(deck *domain.Deck, compiler *prompts.Compiler, images generator.ImageService, opts ...StudioOption) *Studio {
	s := &Studio{
		deck:        deck,
		compiler:    compiler,
		images:      images,
		concurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Job は GenerateBatch の1件分の指示です。
type Job struct {
	SlideID   domain.SlideID
	Variables domain.VariableSet
}

// Do は fn をデッキのロックを保持したまま実行します。
// ホスト（UI など）からのデッキ操作はここを経由させてください。
func (s *Studio) Do(fn func(d *domain.Deck) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.deck)
}

// Slides は現在のスライドのコピーを返します。
func (s *Studio) Slides() []domain.Slide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Slides()
}

// Preview は画像を生成せずにコンパイル結果のプロンプトだけを返します。
func (s *Studio) Preview(values domain.VariableSet) (string, error) {
	return s.compiler.Compile(values)
}

// GenerateForSelected は呼び出し時点で選択されているスライドに対して画像を生成し、添付します。
// 選択がない場合は *domain.NotFoundError を返します。
func (s *Studio) GenerateForSelected(ctx context.Context, values domain.VariableSet) (domain.Slide, error) {
	s.mu.Lock()
	id := s.deck.SelectedID()
	s.mu.Unlock()

	if id == "" {
		return domain.Slide{}, &domain.NotFoundError{}
	}
	return s.GenerateForSlide(ctx, id, values)
}

// GenerateForSlide は values をコンパイルして画像を生成し、指定スライドに添付します。
// 検証・生成・添付のいずれかが失敗した場合、デッキは変更されません。
func (s *Studio) GenerateForSlide(ctx context.Context, id domain.SlideID, values domain.VariableSet) (domain.Slide, error) {
	prompt, err := s.compiler.Compile(values)
	if err != nil {
		return domain.Slide{}, err
	}
	snapshot := s.compiler.Schema().Normalize(values)

	if err := s.ensureSlides(id); err != nil {
		return domain.Slide{}, err
	}

	handle, err := s.generate(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "Image generation failed; slide left unchanged",
			slog.String("slide_id", id.String()),
			slog.Any("error", err),
		)
		return domain.Slide{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deck.AttachGeneratedImage(id, handle, prompt, snapshot); err != nil {
		return domain.Slide{}, fmt.Errorf("生成中にスライドが削除されました: %w", err)
	}

	slog.InfoContext(ctx, "Generated image attached",
		slog.String("slide_id", id.String()),
		slog.String("uri_scheme", uriScheme(handle.URI)),
		slog.Int("prompt_length", len(prompt)),
	)
	return s.deck.Slide(id)
}

// GenerateBatch は複数スライドの画像を並列に生成し、すべて成功した場合にだけ
// ジョブの順序どおりに添付します。検証エラーはすべてのジョブ分をまとめて返します。
func (s *Studio) GenerateBatch(ctx context.Context, jobs []Job) ([]domain.Slide, error) {
	type compiled struct {
		prompt   string
		snapshot domain.VariableSet
	}

	items := make([]compiled, len(jobs))
	var errs []error
	for i, job := range jobs {
		prompt, err := s.compiler.Compile(job.Variables)
		if err != nil {
			errs = append(errs, fmt.Errorf("slide %s: %w", job.SlideID, err))
			continue
		}
		items[i] = compiled{prompt: prompt, snapshot: s.compiler.Schema().Normalize(job.Variables)}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	ids := make([]domain.SlideID, len(jobs))
	for i, job := range jobs {
		ids[i] = job.SlideID
	}
	if err := s.ensureSlides(ids...); err != nil {
		return nil, err
	}

	handles := make([]*domain.ImageHandle, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	slog.InfoContext(ctx, "Starting batch generation", "count", len(jobs), "concurrency", s.concurrency)
	for i := range jobs {
		eg.Go(func() error {
			h, err := s.generate(egCtx, items[i].prompt)
			if err != nil {
				return fmt.Errorf("slide %s: %w", jobs[i].SlideID, err)
			}
			handles[i] = h
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 途中でスライドが削除されていたら、1枚も添付せずに終える
	for _, id := range ids {
		if s.deck.IndexOf(id) < 0 {
			return nil, fmt.Errorf("生成中にスライドが削除されました: %w", &domain.NotFoundError{ID: id})
		}
	}

	out := make([]domain.Slide, len(jobs))
	for i, job := range jobs {
		if err := s.deck.AttachGeneratedImage(job.SlideID, handles[i], items[i].prompt, items[i].snapshot); err != nil {
			return nil, err
		}
		out[i], _ = s.deck.Slide(job.SlideID)
	}
	slog.InfoContext(ctx, "Batch generation completed", "count", len(jobs))
	return out, nil
}

// generate はタイムアウトを適用して画像生成サービスを呼び出します。
func (s *Studio) generate(ctx context.Context, prompt string) (*domain.ImageHandle, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ratio := s.compiler.AspectRatio()
	h, err := s.images.Generate(ctx, prompt, ratio)
	if err != nil {
		var ge *generator.GenerationError
		if errors.As(err, &ge) {
			return nil, err
		}
		return nil, &generator.GenerationError{Prompt: prompt, AspectRatio: ratio, Err: err}
	}
	if h == nil {
		return nil, &generator.GenerationError{Prompt: prompt, AspectRatio: ratio, Err: errors.New("画像ハンドルが返されませんでした")}
	}
	return h, nil
}

// ensureSlides は ids がすべてデッキに存在することを確認します。
func (s *Studio) ensureSlides(ids ...domain.SlideID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if s.deck.IndexOf(id) < 0 {
			return &domain.NotFoundError{ID: id}
		}
	}
	return nil
}

func uriScheme(uri string) string {
	scheme, _, _ := strings.Cut(uri, ":")
	return scheme
}
