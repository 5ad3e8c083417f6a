package platform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("remove title bar: %w", &CallError{Op: "SetWindowLongW", Code: 5})

	assert.True(t, errors.Is(err, ErrCallFailed))
	var ce *CallError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, uint32(5), ce.Code)
	assert.Equal(t, "SetWindowLongW failed (code 5)", ce.Error())
}

func TestHandleIsOpaque(t *testing.T) {
	a := HandleFromRaw(0x1234)
	b := HandleFromRaw(0x1234)

	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())
	assert.True(t, Handle{}.IsZero())
	assert.Equal(t, uintptr(0x1234), a.Raw())
	assert.Equal(t, "0x1234", a.String())
}

func TestRectFromBounds(t *testing.T) {
	r := RectFromBounds(10, 20, 800, 600)
	assert.Equal(t, Rect{Left: 10, Top: 20, Right: 810, Bottom: 620}, r)
	assert.Equal(t, 800, r.Width())
	assert.Equal(t, 600, r.Height())
}
