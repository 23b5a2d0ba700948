package domain

import (
	"maps"
	"slices"
)

// VariableSet はプロンプト変数名から値へのマップです。
// 値型として扱い、スライドへ添付するときは必ずコピーします。
type VariableSet map[string]string

// Clone は独立したコピーを返します。nil は nil のままです。
func (v VariableSet) Clone() VariableSet {
	if v == nil {
		return nil
	}
	return maps.Clone(v)
}

// Get は変数の値を返します。未設定の場合は空文字です。
func (v VariableSet) Get(name string) string {
	return v[name]
}

// Names は設定されている変数名を辞書順で返します。
func (v VariableSet) Names() []string {
	return slices.Sorted(maps.Keys(v))
}
