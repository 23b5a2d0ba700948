package generator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// countingService は呼び出し回数を数えるテスト用の ImageService なのだ。
type countingService struct {
	calls atomic.Int32
	delay time.Duration
	fail  bool
}

func (c *countingService) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.fail {
		return nil, &GenerationError{Prompt: prompt, AspectRatio: ratio, Err: errors.New("backend down")}
	}
	return &domain.ImageHandle{URI: "mem://" + prompt, Data: []byte{1}, Prompt: prompt, AspectRatio: ratio}, nil
}

func TestCachedImageService_ReusesResult(t *testing.T) {
	backend := &countingService{}
	svc := NewCachedImageService(backend, time.Minute)

	a, err := svc.Generate(context.Background(), "p", domain.AspectRatio16x9)
	if err != nil {
		t.Fatal(err)
	}
	a.Data[0] = 9 // 呼び出し側の変更がキャッシュに波及しないこと

	b, err := svc.Generate(context.Background(), "p", domain.AspectRatio16x9)
	if err != nil {
		t.Fatal(err)
	}
	if backend.calls.Load() != 1 {
		t.Errorf("キャッシュが使われていません: calls=%d", backend.calls.Load())
	}
	if b.Data[0] != 1 {
		t.Error("キャッシュ内のハンドルが呼び出し側と共有されています")
	}

	if _, err := svc.Generate(context.Background(), "q", domain.AspectRatio16x9); err != nil {
		t.Fatal(err)
	}
	if backend.calls.Load() != 2 || svc.Len() != 2 {
		t.Errorf("異なるプロンプトはキャッシュを共有しないはずです: calls=%d len=%d", backend.calls.Load(), svc.Len())
	}

	svc.Invalidate("p", domain.AspectRatio16x9)
	if _, err := svc.Generate(context.Background(), "p", domain.AspectRatio16x9); err != nil {
		t.Fatal(err)
	}
	if backend.calls.Load() != 3 {
		t.Errorf("Invalidate 後は再生成されるはずです: calls=%d", backend.calls.Load())
	}
}

func TestCachedImageService_CollapsesConcurrentRequests(t *testing.T) {
	backend := &countingService{delay: 50 * time.Millisecond}
	svc := NewCachedImageService(backend, time.Minute)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Generate(context.Background(), "same", domain.AspectRatio16x9); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := backend.calls.Load(); n != 1 {
		t.Errorf("同時リクエストがまとめられていません: calls=%d", n)
	}
}

// gatedService は release が閉じられるまで生成を保留するテスト用の ImageService です。
type gatedService struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
}

func (g *gatedService) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		g.ctxErr.Store(ctx.Err())
		return nil, ctx.Err()
	}
	return &domain.ImageHandle{URI: "mem://" + prompt, Data: []byte{1}, Prompt: prompt, AspectRatio: ratio}, nil
}

func TestCachedImageService_LeaderCancelDoesNotFailWaiters(t *testing.T) {
	backend := &gatedService{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewCachedImageService(backend, time.Minute)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.Generate(leaderCtx, "same", domain.AspectRatio16x9)
		leaderErr <- err
	}()
	<-backend.started

	cancelLeader()
	select {
	case err := <-leaderErr:
		if !errors.Is(err, context.Canceled) || !errors.Is(err, ErrGeneration) {
			t.Errorf("キャンセルした呼び出し元には GenerationError(context.Canceled) を期待しました: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("キャンセルした呼び出し元が待機から戻りません")
	}

	waiterResult := make(chan error, 1)
	go func() {
		h, err := svc.Generate(context.Background(), "same", domain.AspectRatio16x9)
		if err == nil && h.URI != "mem://same" {
			err = errors.New("想定外のハンドル: " + h.URI)
		}
		waiterResult <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(backend.release)

	select {
	case err := <-waiterResult:
		if err != nil {
			t.Errorf("相乗りした呼び出し元が失敗しました: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("相乗りした呼び出し元が結果を受け取れません")
	}
	if v := backend.ctxErr.Load(); v != nil {
		t.Errorf("まとめた生成が最初の呼び出し元のキャンセルで中断されました: %v", v)
	}
	if n := backend.calls.Load(); n != 1 {
		t.Errorf("バックエンド呼び出し回数: 期待 1, 実際 %d", n)
	}
	if svc.Len() != 1 {
		t.Errorf("生成結果がキャッシュされていません: len=%d", svc.Len())
	}
}

func TestCachedImageService_DoesNotCacheFailures(t *testing.T) {
	backend := &countingService{fail: true}
	svc := NewCachedImageService(backend, time.Minute)

	for range 2 {
		_, err := svc.Generate(context.Background(), "p", domain.AspectRatio16x9)
		if !errors.Is(err, ErrGeneration) {
			t.Fatalf("GenerationError を期待しました: %v", err)
		}
	}
	if backend.calls.Load() != 2 || svc.Len() != 0 {
		t.Errorf("失敗がキャッシュされています: calls=%d len=%d", backend.calls.Load(), svc.Len())
	}
}

func TestRateLimitedImageService(t *testing.T) {
	t.Run("制限なしならそのまま委譲する", func(t *testing.T) {
		backend := &countingService{}
		svc := NewRateLimitedImageService(backend, 0, 0)
		for range 5 {
			if _, err := svc.Generate(context.Background(), "p", domain.AspectRatio16x9); err != nil {
				t.Fatal(err)
			}
		}
		if backend.calls.Load() != 5 {
			t.Errorf("calls=%d", backend.calls.Load())
		}
	})

	t.Run("待機中のキャンセルは GenerationError", func(t *testing.T) {
		backend := &countingService{}
		svc := NewRateLimitedImageService(backend, time.Hour, 1)
		if _, err := svc.Generate(context.Background(), "p", domain.AspectRatio16x9); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := svc.Generate(ctx, "p", domain.AspectRatio16x9)
		if !errors.Is(err, ErrGeneration) {
			t.Fatalf("GenerationError を期待しました: %v", err)
		}
		if backend.calls.Load() != 1 {
			t.Errorf("制限中にバックエンドが呼ばれました: calls=%d", backend.calls.Load())
		}
	})

	t.Run("バックエンドの失敗も GenerationError", func(t *testing.T) {
		svc := NewRateLimitedImageService(ImageServiceFunc(func(context.Context, string, domain.AspectRatio) (*domain.ImageHandle, error) {
			return nil, errors.New("plain error")
		}), 0, 1)
		_, err := svc.Generate(context.Background(), "p", domain.AspectRatio16x9)
		var ge *GenerationError
		if !errors.As(err, &ge) {
			t.Fatalf("GenerationError を期待しました: %v", err)
		}
	})
}
