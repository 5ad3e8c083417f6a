package window

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/platform/platformtest"
	"github.com/1broseidon/wintile/internal/style"
)

func decorated(fake *platformtest.Fake, raw uintptr, maximized bool) platform.Handle {
	s := style.OverlappedWindow | style.Visible
	if maximized {
		s.Insert(style.Maximize)
	}
	return fake.Add(raw, platformtest.Window{
		Style:   s,
		ExStyle: style.WindowEdge,
		Rect:    platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700},
		Title:   "Untitled - Notepad",
		Path:    `C:\Windows\System32\notepad.exe`,
	})
}

func TestManageCapturesOnce(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 1, false)

	w := New(h)
	require.NoError(t, w.Manage(fake))

	orig, ok := w.Original()
	require.True(t, ok)
	assert.Equal(t, style.OverlappedWindow|style.Visible, orig.Style)
	assert.Equal(t, platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}, orig.Rect)
	assert.False(t, orig.Maximized)
	assert.Equal(t, style.WindowEdge, w.ExStyle)

	err := w.Manage(fake)
	assert.True(t, errors.Is(err, ErrAlreadyManaged))
}

func TestManagePropagatesPlatformFailure(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 1, false)
	fake.Fail("GetWindowRect", 5)

	w := New(h)
	err := w.Manage(fake)
	assert.True(t, errors.Is(err, platform.ErrCallFailed))
	assert.False(t, w.Managed())
}

func TestRemoveTitleBarIsIdempotent(t *testing.T) {
	w := New(platform.HandleFromRaw(1))
	w.Style = style.OverlappedWindow | style.Visible

	w.RemoveTitleBar(true)
	once := w.Style
	w.RemoveTitleBar(true)

	assert.Equal(t, once, w.Style)
	assert.False(t, w.Style.Has(style.Caption))
	assert.False(t, w.Style.Has(style.ThickFrame))
	assert.True(t, w.Style.Has(style.Border))
	assert.True(t, w.Style.Has(style.Visible))
}

func TestRemoveTitleBarKeepsBrowserChrome(t *testing.T) {
	w := New(platform.HandleFromRaw(1))
	w.Rule.Firefox = true
	w.Style = style.OverlappedWindow

	w.RemoveTitleBar(false)
	assert.True(t, w.Style.Has(style.Caption))
	assert.True(t, w.Style.Has(style.ThickFrame))
}

func TestResetRoundTrip(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 1, false)

	w := New(h)
	require.NoError(t, w.Manage(fake))
	w.RemoveTitleBar(false)
	require.NoError(t, w.UpdateStyle(fake))
	require.NoError(t, fake.SetWindowPos(h, platform.InsertTop, platform.Rect{Right: 400, Bottom: 300}, 0))
	require.False(t, fake.Get(h).Style.Has(style.Caption))

	require.NoError(t, w.Reset(fake))

	got := fake.Get(h)
	assert.Equal(t, style.OverlappedWindow|style.Visible, got.Style)
	assert.Equal(t, platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}, got.Rect)
	assert.False(t, got.Maximized)
}

func TestResetOrderAndMaximize(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 7, true)

	w := New(h)
	require.NoError(t, w.Manage(fake))
	fake.ResetCalls()

	require.NoError(t, w.Reset(fake))

	calls := fake.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0], "SetStyle")
	assert.Contains(t, calls[1], "SetWindowPos")
	assert.Contains(t, calls[2], "SysCommand 0x7 0xf030")
	assert.True(t, fake.Get(h).Maximized)
}

func TestResetStopsAtFirstFailure(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 1, true)

	w := New(h)
	require.NoError(t, w.Manage(fake))
	w.RemoveTitleBar(false)
	require.NoError(t, w.UpdateStyle(fake))
	require.NoError(t, fake.SetWindowPos(h, platform.InsertTop, platform.Rect{Right: 400, Bottom: 300}, 0))
	fake.ResetCalls()
	fake.Fail("SetWindowLong", 5)

	err := w.Reset(fake)
	assert.True(t, errors.Is(err, platform.ErrCallFailed))
	assert.Empty(t, fake.Calls(), "no position or maximize after a failed style push")
	assert.Equal(t, platform.Rect{Right: 400, Bottom: 300}, fake.Get(h).Rect)
}

func TestResetShowsWindowHiddenForWorkspace(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 1, false)

	w := New(h)
	require.NoError(t, w.Manage(fake))
	require.NoError(t, w.Hide(fake))
	require.True(t, w.Hidden)
	require.False(t, fake.Get(h).Style.Has(style.Visible))
	fake.ResetCalls()

	require.NoError(t, w.Reset(fake))

	calls := fake.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0], "SetStyle")
	assert.Contains(t, calls[1], "SetWindowPos")
	assert.Contains(t, calls[2], "Show 0x1")
	assert.True(t, fake.Get(h).Style.Has(style.Visible))
	assert.False(t, w.Hidden)
}

func TestResetLeavesInvisibleWindowHidden(t *testing.T) {
	fake := platformtest.New()
	h := fake.Add(1, platformtest.Window{Style: style.OverlappedWindow, Rect: platform.Rect{Right: 400, Bottom: 300}})

	w := New(h)
	require.NoError(t, w.Manage(fake))
	require.NoError(t, w.Hide(fake))
	fake.ResetCalls()

	require.NoError(t, w.Reset(fake))
	for _, c := range fake.Calls() {
		assert.NotContains(t, c, "Show")
	}
	assert.False(t, fake.Get(h).Style.Has(style.Visible))
}

func TestResetWithoutManage(t *testing.T) {
	w := New(platform.HandleFromRaw(3))
	assert.True(t, errors.Is(w.Reset(platformtest.New()), ErrNotManaged))
}

func TestProcessName(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 1, false)
	w := New(h)

	name, err := w.LookupProcessName(fake)
	require.NoError(t, err)
	assert.Equal(t, "notepad.exe", name)

	assert.Equal(t, "firefox", BaseName("/usr/lib/firefox/firefox"))
	assert.Equal(t, "plain", BaseName("plain"))
}

func TestProcessNameFailure(t *testing.T) {
	fake := platformtest.New()
	h := fake.Add(9, platformtest.Window{Title: "protected"})
	w := New(h)

	_, err := w.LookupProcessName(fake)
	assert.True(t, errors.Is(err, platform.ErrCallFailed))
}

func TestForegroundAndTopmost(t *testing.T) {
	fake := platformtest.New()
	h := decorated(fake, 1, false)
	w := New(h)

	require.NoError(t, w.ToForeground(fake, true))
	assert.True(t, fake.Get(h).ExStyle.Has(style.Topmost))
	assert.Equal(t, platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}, fake.Get(h).Rect)

	require.NoError(t, w.RemoveTopmost(fake))
	assert.False(t, fake.Get(h).ExStyle.Has(style.Topmost))
}

func TestRegistryUnmanageAll(t *testing.T) {
	fake := platformtest.New()
	reg := NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for raw := uintptr(1); raw <= 3; raw++ {
		h := decorated(fake, raw, false)
		w := New(h)
		require.NoError(t, w.Manage(fake))
		w.RemoveTitleBar(false)
		require.NoError(t, w.UpdateStyle(fake))
		require.NoError(t, reg.Insert(w))
	}
	require.Equal(t, 3, reg.Len())

	require.NoError(t, reg.UnmanageAll(fake))
	assert.Zero(t, reg.Len())
	for raw := uintptr(1); raw <= 3; raw++ {
		assert.True(t, fake.Get(platform.HandleFromRaw(raw)).Style.Has(style.Caption))
	}
}

func TestRegistryUnmanageAllReportsFailures(t *testing.T) {
	fake := platformtest.New()
	reg := NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))

	h := decorated(fake, 1, false)
	w := New(h)
	require.NoError(t, w.Manage(fake))
	require.NoError(t, reg.Insert(w))
	fake.Remove(h)

	err := reg.UnmanageAll(fake)
	assert.True(t, errors.Is(err, platform.ErrCallFailed))
	assert.Zero(t, reg.Len())
}

func TestRegistryOrderAndSwap(t *testing.T) {
	reg := NewRegistry(nil)
	a, b, c := platform.HandleFromRaw(1), platform.HandleFromRaw(2), platform.HandleFromRaw(3)
	for _, h := range []platform.Handle{a, b, c} {
		require.NoError(t, reg.Insert(New(h)))
	}
	assert.True(t, errors.Is(reg.Insert(New(b)), ErrDuplicate))

	require.True(t, reg.Swap(a, c))
	all := reg.All()
	assert.Equal(t, []platform.Handle{c, b, a}, []platform.Handle{all[0].Handle, all[1].Handle, all[2].Handle})

	_, ok := reg.Remove(b)
	require.True(t, ok)
	assert.False(t, reg.Contains(b))
	assert.True(t, reg.Update(a, func(w *Window) { w.Floating = true }))
	got, _ := reg.Get(a)
	assert.True(t, got.Floating)
}
