package domain

import "slices"

// Deck はスライドの順序付きコレクションと選択カーソルを保持します。
// 内部でロックは取らないため、複数のゴルーチンから同じ Deck を操作する場合は
// 呼び出し側で直列化してください。
type Deck struct {
	slides   []*Slide
	selected SlideID // 空文字は「選択なし」
	issued   map[SlideID]struct{}
	newID    func() SlideID
}

// DeckOption は Deck の生成オプションです。
type DeckOption func(*Deck)

// WithIDGenerator はスライドIDの払い出し関数を差し替えます。
// 既に払い出し済みのIDが返された場合は UUID にフォールバックします。
func WithIDGenerator(gen func() SlideID) DeckOption {
	return func(d *Deck) {
		if gen != nil {
			d.newID = gen
		}
	}
}

// NewDeck は空のデッキを生成します。
func NewDeck(opts ...DeckOption) *Deck {
	d := &Deck{
		slides: make([]*Slide, 0),
		issued: make(map[SlideID]struct{}),
		newID:  NewSlideID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len はスライド数を返します。
func (d *Deck) Len() int {
	return len(d.slides)
}

// Slides は全スライドのディープコピーを表示順で返します。
func (d *Deck) Slides() []Slide {
	out := make([]Slide, len(d.slides))
	for i, s := range d.slides {
		out[i] = s.Clone()
	}
	return out
}

// Slide は指定IDのスライドのコピーを返します。
func (d *Deck) Slide(id SlideID) (Slide, error) {
	i := d.IndexOf(id)
	if i < 0 {
		return Slide{}, &NotFoundError{ID: id}
	}
	return d.slides[i].Clone(), nil
}

// IndexOf はスライドの位置を返します。存在しない場合は -1 です。
func (d *Deck) IndexOf(id SlideID) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(d.slides, func(s *Slide) bool { return s.ID == id })
}

// SelectedIndex は選択中スライドの位置を返します。選択がなければ ok は false です。
func (d *Deck) SelectedIndex() (index int, ok bool) {
	i := d.IndexOf(d.selected)
	return i, i >= 0
}

// Selected は選択中スライドのコピーを返します。
func (d *Deck) Selected() (Slide, bool) {
	i, ok := d.SelectedIndex()
	if !ok {
		return Slide{}, false
	}
	return d.slides[i].Clone(), true
}

// SelectedID は選択中スライドのIDを返します。選択がなければ空文字です。
func (d *Deck) SelectedID() SlideID {
	return d.selected
}

// AddSlide は空のスライドを末尾に追加して選択し、そのIDを返します。
func (d *Deck) AddSlide() SlideID {
	d.ensureInit()
	id := d.newID()
	if _, dup := d.issued[id]; dup || id == "" {
		id = NewSlideID()
	}
	d.issued[id] = struct{}{}

	d.slides = append(d.slides, &Slide{ID: id})
	d.selected = id
	return id
}

// DeleteSlide はスライドを削除します。
// 削除したスライドが選択中だった場合、同じ位置に繰り上がったスライド、
// なければ新しい末尾のスライドを選択し、デッキが空になれば選択を解除します。
func (d *Deck) DeleteSlide(id SlideID) error {
	i := d.IndexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	d.slides = slices.Delete(d.slides, i, i+1)
	if d.selected != id {
		return nil
	}

	switch {
	case len(d.slides) == 0:
		d.selected = ""
	case i < len(d.slides):
		d.selected = d.slides[i].ID
	default:
		d.selected = d.slides[len(d.slides)-1].ID
	}
	return nil
}

// SelectSlide は選択カーソルを指定スライドに合わせます。
func (d *Deck) SelectSlide(id SlideID) error {
	if d.IndexOf(id) < 0 {
		return &NotFoundError{ID: id}
	}
	d.selected = id
	return nil
}

// Reorder はスライドを newIndex に移動します。他のスライドの相対順序は保たれ、
// 選択カーソルは移動前と同じスライドを指し続けます。
func (d *Deck) Reorder(id SlideID, newIndex int) error {
	i := d.IndexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if newIndex < 0 || newIndex >= len(d.slides) {
		return &OutOfRangeError{Index: newIndex, Count: len(d.slides)}
	}
	if i == newIndex {
		return nil
	}

	s := d.slides[i]
	d.slides = slices.Delete(d.slides, i, i+1)
	d.slides = slices.Insert(d.slides, newIndex, s)
	return nil
}

// MoveSelectedUp は選択中スライドを1つ前へ移動します。
func (d *Deck) MoveSelectedUp() error {
	return d.moveSelected(-1)
}

// MoveSelectedDown は選択中スライドを1つ後ろへ移動します。
func (d *Deck) MoveSelectedDown() error {
	return d.moveSelected(1)
}

func (d *Deck) moveSelected(delta int) error {
	i, ok := d.SelectedIndex()
	if !ok {
		return &NotFoundError{}
	}
	return d.Reorder(d.selected, i+delta)
}

// UpdateSlideContent はタイトルと本文を部分更新します。nil のフィールドは変更しません。
func (d *Deck) UpdateSlideContent(id SlideID, title, bodyText *string) error {
	i := d.IndexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	s := d.slides[i]
	if title != nil {
		s.Title = *title
	}
	if bodyText != nil {
		s.BodyText = *bodyText
	}
	return nil
}

// AttachGeneratedImage は生成結果をスライドに添付し、以前の画像・プロンプト・変数を上書きします。
// 画像とプロンプト変数はコピーして保持するため、呼び出し側が後で編集しても影響しません。
func (d *Deck) AttachGeneratedImage(id SlideID, image *ImageHandle, sourcePrompt string, sourceVariables VariableSet) error {
	i := d.IndexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	s := d.slides[i]
	s.Image = image.Clone()
	s.SourcePrompt = sourcePrompt
	s.SourceVariables = sourceVariables.Clone()
	return nil
}

func (d *Deck) ensureInit() {
	if d.issued == nil {
		d.issued = make(map[SlideID]struct{})
	}
	if d.newID == nil {
		d.newID = NewSlideID
	}
	if d.slides == nil {
		d.slides = make([]*Slide, 0)
	}
}
