package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/gemini-image-kit/ports"

	"github.com/shouni/go-briefing-kit/internal/config"
	"github.com/shouni/go-briefing-kit/pkg/domain"
	"github.com/shouni/go-briefing-kit/pkg/prompts"
	"github.com/shouni/go-briefing-kit/pkg/workflow"
)

type recordingPanelGenerator struct {
	req ports.ImagePanelRequest
}

func (r *recordingPanelGenerator) GenerateMangaPanel(_ context.Context, req ports.ImagePanelRequest) (*ports.ImageResponse, error) {
	r.req = req
	return &ports.ImageResponse{Data: []byte("png-bytes"), MimeType: "image/png"}, nil
}

func testConfig(backend string) *config.Config {
	wf := workflow.DefaultConfig()
	wf.Backend = backend
	wf.RateInterval = 0
	return &config.Config{Workflow: wf}
}

func TestBuildAppContext(t *testing.T) {
	t.Run("シミュレーションは API キーなしで組み立てられる", func(t *testing.T) {
		appCtx, err := BuildAppContext(context.Background(), testConfig(workflow.BackendSimulated), nil)
		if err != nil {
			t.Fatalf("BuildAppContext: %v", err)
		}
		if appCtx.Manager == nil || appCtx.Studio == nil || appCtx.Deck == nil {
			t.Fatalf("AppContext が不完全なのだ: %+v", appCtx)
		}
	})

	t.Run("gemini は API キーがないとエラー", func(t *testing.T) {
		_, err := BuildAppContext(context.Background(), testConfig(workflow.BackendGemini), nil)
		if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
			t.Errorf("API キー不足のエラーを期待したのだ: %v", err)
		}
	})

	t.Run("gemini は設定のモデル名で生成器を呼ぶ", func(t *testing.T) {
		cfg := testConfig(workflow.BackendGemini)
		cfg.Workflow.ImageModel = "gemini-slide-image"
		gen := &recordingPanelGenerator{}

		appCtx, err := BuildAppContext(context.Background(), cfg, gen)
		if err != nil {
			t.Fatalf("BuildAppContext: %v", err)
		}
		if err := appCtx.Studio.Do(func(d *domain.Deck) error {
			d.AddSlide()
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		slide, err := appCtx.Studio.GenerateForSelected(context.Background(), domain.VariableSet{
			prompts.VarSubject: "a lighthouse",
			prompts.VarStyle:   "illustration",
		})
		if err != nil {
			t.Fatalf("GenerateForSelected: %v", err)
		}
		if gen.req.Model != "gemini-slide-image" {
			t.Errorf("モデル名が生成器に届いていないのだ: %q", gen.req.Model)
		}
		if gen.req.Prompt != slide.SourcePrompt {
			t.Errorf("プロンプトが加工されているのだ: %q", gen.req.Prompt)
		}
	})
}

func TestLocalFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.png")
	if err := os.WriteFile(path, []byte("ref"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, uri := range []string{path, "file://" + path} {
		rc, err := localFileReader{}.Open(context.Background(), uri)
		if err != nil {
			t.Fatalf("%s を開けないのだ: %v", uri, err)
		}
		rc.Close()
	}

	if _, err := (localFileReader{}).Open(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("存在しないファイルでエラーにならなかったのだ")
	}
}
