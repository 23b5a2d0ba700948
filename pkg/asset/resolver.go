package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultSlideFileName はスライド画像の共通のベースファイル名です。
	DefaultSlideFileName = "slide.png"
)

// SlideFileRegex はスライド画像 (slide_1.png 等) に一致します。
var SlideFileRegex = createIndexedRegex(DefaultSlideFileName)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/slide.png", 1 -> "path/to/slide_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// SlideImagePath は出力ディレクトリと1始まりのスライド番号から画像の保存パスを返します。
func SlideImagePath(dir string, index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("スライド番号は1以上である必要があります: %d", index)
	}
	base, err := ResolveOutputPath(dir, DefaultSlideFileName)
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	return GenerateIndexedPath(base, index)
}

// createIndexedRegex は、ファイル名に基づきインデックス付きファイル用の正規表現を生成します。
// 例: "slide.png" -> ^slide_\d+\.png$
func createIndexedRegex(fileName string) *regexp.Regexp {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)

	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), regexp.QuoteMeta(ext))
	return regexp.MustCompile(pattern)
}
