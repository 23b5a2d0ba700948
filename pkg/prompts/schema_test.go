package prompts

import (
	"errors"
	"slices"
	"testing"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

func TestNewSchema(t *testing.T) {
	t.Run("重複した変数名はエラー", func(t *testing.T) {
		_, err := NewSchema(Variable{Name: "a"}, Variable{Name: "a"})
		if err == nil {
			t.Error("重複でエラーになりませんでした")
		}
	})

	t.Run("空の変数名はエラー", func(t *testing.T) {
		if _, err := NewSchema(Variable{Label: "x"}); err == nil {
			t.Error("空の名前でエラーになりませんでした")
		}
	})

	t.Run("Label 省略時は名前を使う", func(t *testing.T) {
		s, err := NewSchema(Variable{Name: "mood"})
		if err != nil {
			t.Fatal(err)
		}
		v, _ := s.Lookup("mood")
		if v.Label != "mood" {
			t.Errorf("期待値 'mood', 実際の値 '%s'", v.Label)
		}
	})
}

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()
	var names []string
	for _, v := range s.Variables() {
		names = append(names, v.Name)
	}
	expected := []string{
		VarSubject, VarAction, VarEnvironment, VarStyle, VarPerspective, VarLighting,
		VarColorPalette, VarKeyDetails, VarAtmosphere, VarComposition, VarFranchiseConstraints,
	}
	if !slices.Equal(names, expected) {
		t.Errorf("宣言順が不正です: %v", names)
	}

	// Variables が返すのはコピーであること
	vars := s.Variables()
	vars[3].Allowed[0] = "mutated"
	if style, _ := s.Lookup(VarStyle); style.Allowed[0] == "mutated" {
		t.Error("スキーマ内部が共有されています")
	}

	if err := s.Validate(s.Defaults()); err != nil {
		t.Errorf("初期値が検証を通りません: %v", err)
	}
}

func TestSchema_Validate(t *testing.T) {
	s := DefaultSchema()

	tests := []struct {
		name     string
		values   domain.VariableSet
		expected []Violation
	}{
		{
			name:   "正常",
			values: domain.VariableSet{VarSubject: "a fox", VarStyle: "illustration"},
		},
		{
			name:   "必須2つの欠落を両方報告する",
			values: domain.VariableSet{VarLighting: "soft"},
			expected: []Violation{
				{Variable: VarSubject, Kind: ViolationMissing},
				{Variable: VarStyle, Kind: ViolationMissing},
			},
		},
		{
			name:   "空白のみの必須は欠落扱い",
			values: domain.VariableSet{VarSubject: "  ", VarStyle: "abstract"},
			expected: []Violation{
				{Variable: VarSubject, Kind: ViolationMissing},
			},
		},
		{
			name:   "列挙外の値と未知の変数をまとめて報告する",
			values: domain.VariableSet{VarSubject: "a fox", VarStyle: "watercolor", "zeta": "1", "mood": "calm"},
			expected: []Violation{
				{Variable: VarStyle, Kind: ViolationNotAllowed, Value: "watercolor", Allowed: StyleOptions},
				{Variable: "mood", Kind: ViolationUnknown, Value: "calm"},
				{Variable: "zeta", Kind: ViolationUnknown, Value: "1"},
			},
		},
		{
			name:   "出力指定の予約句は拒否する",
			values: domain.VariableSet{VarSubject: "a fox. Output Specs: 1:1", VarStyle: "abstract"},
			expected: []Violation{
				{Variable: VarSubject, Kind: ViolationReserved, Value: "a fox. Output Specs: 1:1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.values)
			if len(tt.expected) == 0 {
				if err != nil {
					t.Fatalf("エラーは期待していません: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ValidationError を期待しました: %v", err)
			}
			if len(ve.Violations) != len(tt.expected) {
				t.Fatalf("違反数が一致しません: %v", ve.Violations)
			}
			for i, want := range tt.expected {
				got := ve.Violations[i]
				if got.Variable != want.Variable || got.Kind != want.Kind || got.Value != want.Value || !slices.Equal(got.Allowed, want.Allowed) {
					t.Errorf("違反 %d: 期待 %+v, 実際 %+v", i, want, got)
				}
			}
		})
	}
}

func TestSchema_ValidateHasNoSideEffects(t *testing.T) {
	s := DefaultSchema()
	v := domain.VariableSet{VarSubject: " a fox ", "unknown": "x"}
	_ = s.Validate(v)
	if v[VarSubject] != " a fox " || v["unknown"] != "x" || len(v) != 2 {
		t.Errorf("Validate が入力を変更しています: %v", v)
	}
}

func TestSchema_Normalize(t *testing.T) {
	s := DefaultSchema()
	got := s.Normalize(domain.VariableSet{VarSubject: " a  fox ", VarAction: " ", "unknown": "x"})
	if len(got) != 1 || got[VarSubject] != "a  fox" {
		t.Errorf("正規化結果が不正です: %v", got)
	}
}
