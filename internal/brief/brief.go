package brief

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// Brief は1枚のスライド分の入力なのだ。YAML ファイルから読み込むのだよ。
//
//	title: Dragon Keynote
//	body: Opening slide
//	variables:
//	  subject: a silver dragon
//	  style: illustration
type Brief struct {
	Title     string            `yaml:"title"`
	Body      string            `yaml:"body"`
	Variables map[string]string `yaml:"variables"`
}

// VariableSet はブリーフの変数をドメインの VariableSet に変換するのだ。
func (b Brief) VariableSet() domain.VariableSet {
	return domain.VariableSet(b.Variables).Clone()
}

// DeckBrief は複数スライド分のブリーフなのだ。
//
//	slides:
//	  - title: Opening
//	    variables: {subject: a lighthouse, style: abstract}
type DeckBrief struct {
	Slides []Brief `yaml:"slides"`
}

// Load は path のブリーフを読み込むのだ。"-" なら標準入力から読むのだよ。
func Load(path string) (*Brief, error) {
	var b Brief
	if err := loadYAML(path, &b); err != nil {
		return nil, err
	}
	b.Title = strings.TrimSpace(b.Title)
	return &b, nil
}

// Decode は r から YAML のブリーフをデコードするのだ。知らないキーはエラーにするのだ。
func Decode(r io.Reader) (*Brief, error) {
	var b Brief
	if err := decodeYAML(r, &b); err != nil {
		return nil, err
	}
	b.Title = strings.TrimSpace(b.Title)
	return &b, nil
}

// LoadDeck は path から複数スライド分のブリーフを読み込むのだ。
func LoadDeck(path string) (*DeckBrief, error) {
	var d DeckBrief
	if err := loadYAML(path, &d); err != nil {
		return nil, err
	}
	if len(d.Slides) == 0 {
		return nil, fmt.Errorf("ブリーフファイル '%s' にスライドがないのだ", path)
	}
	for i := range d.Slides {
		d.Slides[i].Title = strings.TrimSpace(d.Slides[i].Title)
	}
	return &d, nil
}

func loadYAML(path string, out any) error {
	if path == "-" {
		return decodeYAML(os.Stdin, out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ブリーフファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	if err := decodeYAML(bytes.NewReader(data), out); err != nil {
		return fmt.Errorf("ブリーフファイル '%s': %w", path, err)
	}
	return nil
}

func decodeYAML(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("ブリーフが空なのだ")
		}
		return fmt.Errorf("ブリーフのデコードに失敗しました: %w", err)
	}
	return nil
}
