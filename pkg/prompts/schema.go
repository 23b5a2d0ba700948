package prompts

import (
	"fmt"
	"slices"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// 変数名の定義です。テンプレート上の並び順は DefaultSchema の宣言順で決まります。
const (
	VarSubject              = "subject"
	VarAction               = "action"
	VarEnvironment          = "environment"
	VarStyle                = "style"
	VarPerspective          = "perspective"
	VarLighting             = "lighting"
	VarColorPalette         = "color_palette"
	VarKeyDetails           = "key_details"
	VarAtmosphere           = "atmosphere"
	VarComposition          = "composition"
	VarFranchiseConstraints = "franchise_constraints"
)

// StyleOptions は style 変数に指定できる値の一覧です。
var StyleOptions = []string{
	"digital matte painting, hyper-realistic",
	"illustration",
	"abstract",
	"photorealistic",
	"cel-shaded anime",
}

// Variable はスキーマ上の1変数の定義です。
type Variable struct {
	Name        string   // VariableSet のキー
	Label       string   // プロンプト上の見出し（例: "Color Palette"）
	Required    bool     // 必須かどうか
	Allowed     []string // 空なら自由記述、そうでなければ列挙値のいずれか
	Suggestions []string // 入力フォーム向けの候補（検証には使わない）
}

// IsEnum は列挙型の変数かどうかを返します。
func (v Variable) IsEnum() bool {
	return len(v.Allowed) > 0
}

// Schema は変数定義の順序付き集合です。宣言順がそのままプロンプトの節の順序になります。
type Schema struct {
	vars  []Variable
	index map[string]int
}

// NewSchema は変数定義からスキーマを生成します。名前の重複や空の名前はエラーです。
func NewSchema(vars ...Variable) (*Schema, error) {
	s := &Schema{
		vars:  make([]Variable, 0, len(vars)),
		index: make(map[string]int, len(vars)),
	}
	for _, v := range vars {
		if v.Name == "" {
			return nil, fmt.Errorf("変数名が空です")
		}
		if _, dup := s.index[v.Name]; dup {
			return nil, fmt.Errorf("変数 '%s' が重複して定義されています", v.Name)
		}
		if v.Label == "" {
			v.Label = v.Name
		}
		v.Allowed = slices.Clone(v.Allowed)
		v.Suggestions = slices.Clone(v.Suggestions)
		s.index[v.Name] = len(s.vars)
		s.vars = append(s.vars, v)
	}
	return s, nil
}

// DefaultSchema はアートディレクター向けブリーフィングの標準スキーマを返します。
func DefaultSchema() *Schema {
	s, err := NewSchema(
		Variable{Name: VarSubject, Label: "Subject", Required: true,
			Suggestions: []string{"a silver dragon perched on a jagged cliff"}},
		Variable{Name: VarAction, Label: "Action",
			Suggestions: []string{"roaring toward the stormy sky"}},
		Variable{Name: VarEnvironment, Label: "Environment",
			Suggestions: []string{"craggy seaside coast at dusk"}},
		Variable{Name: VarStyle, Label: "Style", Required: true, Allowed: StyleOptions},
		Variable{Name: VarPerspective, Label: "Perspective",
			Suggestions: []string{"low-angle shot"}},
		Variable{Name: VarLighting, Label: "Lighting",
			Suggestions: []string{"dramatic backlight with lightning flashes"}},
		Variable{Name: VarColorPalette, Label: "Color Palette",
			Suggestions: []string{"dark slate grays with electric blue highlights"}},
		Variable{Name: VarKeyDetails, Label: "Key Details",
			Suggestions: []string{"swirling mist around wings, ancient carved runes on cliff face"}},
		Variable{Name: VarAtmosphere, Label: "Atmosphere",
			Suggestions: []string{"tense and awe-inspiring"}},
		Variable{Name: VarComposition, Label: "Composition",
			Suggestions: []string{"dragon silhouette centered against lightning bolts"}},
		Variable{Name: VarFranchiseConstraints, Label: "Franchise Constraints"},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// Variables は宣言順の変数定義のコピーを返します。
func (s *Schema) Variables() []Variable {
	out := make([]Variable, len(s.vars))
	for i, v := range s.vars {
		v.Allowed = slices.Clone(v.Allowed)
		v.Suggestions = slices.Clone(v.Suggestions)
		out[i] = v
	}
	return out
}

// Lookup は名前から変数定義を返します。
func (s *Schema) Lookup(name string) (Variable, bool) {
	i, ok := s.index[name]
	if !ok {
		return Variable{}, false
	}
	return s.vars[i], true
}

// Defaults は各変数の最初の候補値を詰めた VariableSet を返します。
// 列挙型は最初の許可値を使います。入力フォームの初期値向けです。
func (s *Schema) Defaults() domain.VariableSet {
	out := make(domain.VariableSet, len(s.vars))
	for _, v := range s.vars {
		switch {
		case v.IsEnum():
			out[v.Name] = v.Allowed[0]
		case len(v.Suggestions) > 0:
			out[v.Name] = v.Suggestions[0]
		}
	}
	return out
}
