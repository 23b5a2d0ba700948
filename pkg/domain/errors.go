package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は存在しないスライドIDが指定されたことを示します。
	ErrNotFound = errors.New("slide not found")
	// ErrOutOfRange は並べ替え先のインデックスが範囲外であることを示します。
	ErrOutOfRange = errors.New("index out of range")
)

// NotFoundError は操作対象のスライドがデッキに存在しない場合のエラーです。
// 古いIDを保持したままの呼び出し元は、デッキの状態を読み直せば回復できます。
type NotFoundError struct {
	ID SlideID
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return "no slide selected"
	}
	return fmt.Sprintf("slide %q not found", string(e.ID))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// OutOfRangeError は並べ替え先が [0, Count) に収まらない場合のエラーです。
type OutOfRangeError struct {
	Index int
	Count int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Count)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
