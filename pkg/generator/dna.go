package generator

import (
	"crypto/sha256"
	"encoding/binary"
)

// SeedFromPrompt はプロンプトから決定論的なシード値を生成します。
// 同じプロンプトで再生成したときに、できるだけ同じ絵が返るようにするためのものです。
func SeedFromPrompt(prompt string) int64 {
	hash := sha256.Sum256([]byte(prompt))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// Gemini のシード値は正の数が望ましいため、最上位ビットを落とします
	return int64(seed & 0x7FFFFFFF)
}
