package bar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/wintile/internal/platform"
)

// Segment is one component's rendered output.
type Segment struct {
	Component string `json:"component"`
	Clickable bool   `json:"clickable"`
	Texts     []Text `json:"texts"`
}

// Snapshot is a fully rendered bar.
type Snapshot struct {
	Left       []Segment `json:"left"`
	Center     []Segment `json:"center"`
	Right      []Segment `json:"right"`
	RenderedAt time.Time `json:"rendered_at"`
}

// Layout places components in the bar's three sections.
type Layout struct {
	Left   []*Component
	Center []*Component
	Right  []*Component
}

// DefaultLayout is workspaces on the left, the focused window in the middle
// and mode, date and time on the right.
func DefaultLayout(s State, datePattern, timePattern string, highlight uint32, now Clock) Layout {
	return Layout{
		Left:   []*Component{Padding(1), Workspaces(s, highlight)},
		Center: []*Component{CurrentWindow(s)},
		Right: []*Component{
			ActiveMode(s),
			Padding(2),
			Date(datePattern, now),
			Padding(2),
			Time(timePattern, now),
			Padding(1),
		},
	}
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Layout   Layout
	Display  func() (platform.Display, error)
	Interval time.Duration
	Logger   *slog.Logger
	Clock    Clock
}

// Runner renders the bar periodically while it is open and keeps the latest
// snapshot for clients to display.
type Runner struct {
	cfg RunnerConfig

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	snapshot Snapshot
	display  platform.Display
}

// NewRunner returns a closed bar.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Runner{cfg: cfg}
}

// Create opens the bar: it renders once, then keeps rendering on a ticker.
// Creating an open bar is a no-op.
func (r *Runner) Create() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return nil
	}

	if r.cfg.Display != nil {
		d, err := r.cfg.Display()
		if err != nil {
			return fmt.Errorf("query display: %w", err)
		}
		r.display = d
	}
	r.snapshot = r.renderLocked()

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)

	r.cfg.Logger.Debug("app bar created")
	return nil
}

// Close stops rendering. Closing a closed bar is a no-op.
func (r *Runner) Close() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	r.cfg.Logger.Debug("app bar closed")
	return nil
}

// Open reports whether the bar is open.
func (r *Runner) Open() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			r.snapshot = r.renderLocked()
			r.mu.Unlock()
		}
	}
}

// Snapshot returns the most recent rendering. A closed bar renders on demand.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return r.renderLocked()
	}
	return r.snapshot
}

func (r *Runner) renderLocked() Snapshot {
	section := func(cs []*Component) []Segment {
		out := make([]Segment, 0, len(cs))
		for _, c := range cs {
			out = append(out, Segment{Component: c.Name, Clickable: c.Clickable(), Texts: c.Render(r.display)})
		}
		return out
	}
	return Snapshot{
		Left:       section(r.cfg.Layout.Left),
		Center:     section(r.cfg.Layout.Center),
		Right:      section(r.cfg.Layout.Right),
		RenderedAt: r.cfg.Clock(),
	}
}

// Click forwards a click on segment idx of the named component.
func (r *Runner) Click(name string, idx int) error {
	var target *Component
	for _, cs := range [][]*Component{r.cfg.Layout.Left, r.cfg.Layout.Center, r.cfg.Layout.Right} {
		for _, c := range cs {
			if c.Name == name {
				target = c
			}
		}
	}
	if target == nil {
		return fmt.Errorf("no bar component named %q", name)
	}
	if !target.Clickable() {
		return fmt.Errorf("bar component %q is not clickable", name)
	}

	r.mu.Lock()
	d := r.display
	r.mu.Unlock()
	target.Click(d, idx)
	return nil
}
