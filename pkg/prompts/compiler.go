package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

const (
	// ClauseSeparator は変数の節をつなぐ区切り文字です。
	ClauseSeparator = ", "
	// AspectRatioDirective はすべてのプロンプトの末尾に1度だけ付く出力指定です。
	AspectRatioDirective = "Output Specs: 16:9 aspect ratio, 3840x2160"

	outputSpecsMarker = "Output Specs:"
)

// Compiler は VariableSet を1本のプロンプト文字列に変換します。
// 同じ入力には常にバイト単位で同じ出力を返します。
type Compiler struct {
	schema *Schema
}

// NewCompiler は Compiler を生成します。schema が nil の場合は DefaultSchema を使います。
func NewCompiler(schema *Schema) *Compiler {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Compiler{schema: schema}
}

// Schema はコンパイラが使うスキーマを返します。
func (c *Compiler) Schema() *Schema {
	return c.schema
}

// AspectRatio はコンパイル結果が要求するアスペクト比です。
func (c *Compiler) AspectRatio() domain.AspectRatio {
	return domain.AspectRatio16x9
}

// Validate はスキーマによる検証を行います。
func (c *Compiler) Validate(values domain.VariableSet) error {
	return c.schema.Validate(values)
}

// Compile は検証を通った values をスキーマの宣言順に "Label: value" の節として並べ、
// 末尾にアスペクト比の指定を付けたプロンプトを返します。
// 空または未設定の任意変数は省略されます。
func (c *Compiler) Compile(values domain.VariableSet) (string, error) {
	if err := c.schema.Validate(values); err != nil {
		return "", err
	}

	clauses := make([]string, 0, len(c.schema.vars))
	for _, v := range c.schema.vars {
		val := strings.TrimSpace(values[v.Name])
		if val == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s: %s", v.Label, val))
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(clauses, ClauseSeparator))
	if sb.Len() > 0 {
		sb.WriteString(". ")
	}
	sb.WriteString(AspectRatioDirective)
	return sb.String(), nil
}
