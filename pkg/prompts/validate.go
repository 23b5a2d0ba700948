package prompts

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// ErrValidation はプロンプト変数の検証エラーを示すセンチネルです。
var ErrValidation = errors.New("invalid prompt variables")

// ViolationKind は検証違反の種類です。
type ViolationKind string

const (
	ViolationMissing    ViolationKind = "missing"     // 必須変数が未設定または空
	ViolationNotAllowed ViolationKind = "not_allowed" // 列挙値以外が指定された
	ViolationUnknown    ViolationKind = "unknown"     // スキーマにない変数名
	ViolationReserved   ViolationKind = "reserved"    // 出力指定の予約句を含む
)

// Violation は1変数分の検証違反です。
type Violation struct {
	Variable string
	Kind     ViolationKind
	Value    string
	Allowed  []string
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationMissing:
		return fmt.Sprintf("%s: required variable is missing", v.Variable)
	case ViolationNotAllowed:
		return fmt.Sprintf("%s: value %q is not one of [%s]", v.Variable, v.Value, strings.Join(v.Allowed, " | "))
	case ViolationUnknown:
		return fmt.Sprintf("%s: unknown variable", v.Variable)
	case ViolationReserved:
		return fmt.Sprintf("%s: value must not contain %q", v.Variable, outputSpecsMarker)
	default:
		return fmt.Sprintf("%s: %s", v.Variable, v.Kind)
	}
}

// ValidationError は検出されたすべての違反を保持します。
// 違反はスキーマの宣言順に並び、未知の変数は最後に名前順で並びます。
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Variables は違反のあった変数名を報告順で返します。
func (e *ValidationError) Variables() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Variable
	}
	return out
}

// Validate は values をスキーマに照らして検証します。副作用はありません。
// 最初の違反で止まらず、すべての違反を *ValidationError にまとめて返します。
func (s *Schema) Validate(values domain.VariableSet) error {
	var violations []Violation

	for _, v := range s.vars {
		val := strings.TrimSpace(values[v.Name])
		switch {
		case val == "":
			if v.Required {
				violations = append(violations, Violation{Variable: v.Name, Kind: ViolationMissing})
			}
		case v.IsEnum() && !slices.Contains(v.Allowed, val):
			violations = append(violations, Violation{
				Variable: v.Name,
				Kind:     ViolationNotAllowed,
				Value:    val,
				Allowed:  slices.Clone(v.Allowed),
			})
		case strings.Contains(val, outputSpecsMarker):
			violations = append(violations, Violation{Variable: v.Name, Kind: ViolationReserved, Value: val})
		}
	}

	for _, name := range values.Names() {
		if _, ok := s.index[name]; !ok {
			violations = append(violations, Violation{Variable: name, Kind: ViolationUnknown, Value: values[name]})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Normalize はスキーマ上の変数について前後の空白を取り除き、空の値を落とした新しい VariableSet を返します。
// 値の内部の空白はそのまま残します。未知の変数は含めません。
func (s *Schema) Normalize(values domain.VariableSet) domain.VariableSet {
	out := make(domain.VariableSet, len(values))
	for _, v := range s.vars {
		if val := strings.TrimSpace(values[v.Name]); val != "" {
			out[v.Name] = val
		}
	}
	return out
}
