package domain

import (
	"slices"

	"github.com/google/uuid"
)

// SlideID はデッキ内でスライドを一意に識別する不透明なIDです。
// 生成時に払い出され、同じデッキの中で再利用されることはありません。
type SlideID string

// NewSlideID は新しい SlideID を払い出します。
func NewSlideID() SlideID {
	return SlideID(uuid.NewString())
}

// String は ID の文字列表現を返します。
func (id SlideID) String() string {
	return string(id)
}

// AspectRatio は画像生成に要求するアスペクト比です。
type AspectRatio string

const (
	// AspectRatio16x9 はこのキットが要求する唯一のアスペクト比です。
	AspectRatio16x9 AspectRatio = "16:9"
)

// Dimensions はプレースホルダー画像などに使う標準のピクセルサイズを返します。
// 未知のアスペクト比の場合 ok は false です。
func (r AspectRatio) Dimensions() (width, height int, ok bool) {
	switch r {
	case AspectRatio16x9:
		return 1280, 720, true
	default:
		return 0, 0, false
	}
}

// ImageHandle は画像生成サービスが返す画像への参照です。
type ImageHandle struct {
	URI         string      // 画像の参照先（data: URI やプレースホルダー URI）
	MimeType    string      // 例: "image/png"
	Width       int         // ピクセル幅（不明な場合は 0）
	Height      int         // ピクセル高さ（不明な場合は 0）
	AspectRatio AspectRatio // 要求されたアスペクト比
	Data        []byte      // 画像の実データ（バックエンドがバイト列を返す場合）
	Seed        int64       // 生成に使われたシード値
	Prompt      string      // サービスが受け取ったプロンプト
}

// Clone は Data を含めて独立したコピーを返します。
func (h *ImageHandle) Clone() *ImageHandle {
	if h == nil {
		return nil
	}
	c := *h
	c.Data = slices.Clone(h.Data)
	return &c
}

// Slide はデッキの1エントリです。
type Slide struct {
	ID              SlideID
	Title           string
	BodyText        string
	Image           *ImageHandle
	SourcePrompt    string
	SourceVariables VariableSet
}

// HasImage は生成画像が添付済みかどうかを返します。
func (s Slide) HasImage() bool {
	return s.Image != nil
}

// Clone は画像とプロンプト変数まで含めたディープコピーを返します。
func (s Slide) Clone() Slide {
	c := s
	c.Image = s.Image.Clone()
	c.SourceVariables = s.SourceVariables.Clone()
	return c
}
