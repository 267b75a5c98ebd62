// Package browse implements the per-session search and pagination state
// machine behind the clip grid.
//
// Loading moves idle → initial → idle on a query change and
// idle → incremental → idle on load-more. Every fetch is tagged with the
// request that issued it; a response that is no longer the pending request
// is dropped, so a slow page for an old query never overwrites a newer one.
package browse

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
)

// Fetcher returns one page of catalog entries for a query.
type Fetcher interface {
	SearchVideos(ctx context.Context, query string, page, perPage int) ([]catalog.Entry, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, query string, page, perPage int) ([]catalog.Entry, error)

func (f FetcherFunc) SearchVideos(ctx context.Context, query string, page, perPage int) ([]catalog.Entry, error) {
	return f(ctx, query, page, perPage)
}

// Options configures a Controller. Zero values fall back to the engine defaults.
type Options struct {
	DefaultQuery  string
	DebounceDelay time.Duration
	ViewportWidth int
	NetworkSpeed  catalog.NetworkSpeed
}

// request is the tag carried by one fetch.
type request struct {
	gen     uint64
	query   string
	page    int
	perPage int
	speed   catalog.NetworkSpeed
}

// Controller owns the mutable browse state of one session.
type Controller struct {
	fetcher Fetcher
	opts    Options

	ctx  context.Context
	stop context.CancelFunc

	mu          sync.Mutex
	closed      bool
	started     bool
	term        string
	termSeq     uint64
	timer       *time.Timer
	query       string
	gen         uint64
	page        int
	firstLoaded bool
	videos      []catalog.Video
	hasMore     bool
	loading     LoadingState
	errMsg      string
	selected    *catalog.Video
	width       int
	speed       catalog.NetworkSpeed
	pending     *request
	cancelFetch context.CancelFunc
	version     uint64
	subs        map[int]chan State
	nextSub     int
}

// New returns an idle controller whose Query is the default query.
// Call Start to load the first page.
func New(f Fetcher, opts Options) *Controller {
	if opts.DefaultQuery == "" {
		opts.DefaultQuery = engine.NormQuery("")
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = engine.DefaultDebounceDelay
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Controller{
		fetcher: f,
		opts:    opts,
		ctx:     ctx,
		stop:    stop,
		query:   opts.DefaultQuery,
		page:    1,
		hasMore: true,
		width:   opts.ViewportWidth,
		speed:   opts.NetworkSpeed,
		subs:    make(map[int]chan State),
	}
}

// Start issues the page-1 fetch for the current Query. It does nothing once
// any fetch has been issued, so callers may invoke it on every request.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.started {
		return
	}
	c.beginQueryLocked(c.query)
}

// SetSearchTerm records the draft term and (re)arms the debounce timer.
// When the quiet period passes the term becomes the Query; an empty term
// becomes the default query.
func (c *Controller) SetSearchTerm(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.term = text
	c.termSeq++
	seq := c.termSeq
	q := c.resolve(text)
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.opts.DebounceDelay, func() { c.commitTerm(seq, q) })
	c.publishLocked()
}

// SetQuery makes q the Query at once, skipping the debounce.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.termSeq++
	c.term = strings.TrimSpace(q)
	q = c.resolve(q)
	if q == c.query && (c.firstLoaded || c.loading == Initial) {
		c.publishLocked()
		return
	}
	c.beginQueryLocked(q)
}

func (c *Controller) resolve(text string) string {
	if q := strings.TrimSpace(text); q != "" {
		return q
	}
	return c.opts.DefaultQuery
}

func (c *Controller) commitTerm(seq uint64, q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A newer keystroke re-armed the timer after this one had already fired.
	if c.closed || seq != c.termSeq {
		return
	}
	c.timer = nil
	// A query whose first page failed is fetched again.
	if q == c.query && (c.firstLoaded || c.loading == Initial) {
		return
	}
	c.beginQueryLocked(q)
}

// beginQueryLocked resets pagination for q and starts its page-1 fetch.
func (c *Controller) beginQueryLocked(q string) {
	c.query = q
	c.gen++
	c.page = 1
	c.firstLoaded = false
	c.videos = nil
	c.hasMore = true
	c.startFetchLocked(Initial, 1)
}

// LoadMore fetches the next page. It reports false, doing nothing, while a
// fetch is in flight or when the catalog is exhausted. If page 1 of the
// current Query never loaded, page 1 is retried instead.
func (c *Controller) LoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.loading != Idle || !c.hasMore {
		return false
	}
	if !c.firstLoaded {
		c.startFetchLocked(Initial, 1)
		return true
	}
	c.startFetchLocked(Incremental, c.page+1)
	return true
}

func (c *Controller) startFetchLocked(kind LoadingState, page int) {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	req := &request{
		gen:     c.gen,
		query:   c.query,
		page:    page,
		perPage: catalog.PerPage(c.width),
		speed:   c.speed,
	}
	c.started = true
	c.pending = req
	c.cancelFetch = cancel
	c.loading = kind
	c.errMsg = ""
	c.publishLocked()

	go func() {
		entries, err := c.fetcher.SearchVideos(ctx, req.query, req.page, req.perPage)
		c.finish(req, entries, err)
	}()
}

func (c *Controller) finish(req *request, entries []catalog.Entry, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.pending != req {
		engine.IncrStaleResponses()
		slog.Debug("browse: dropped stale response",
			slog.String("query", req.query), slog.Int("page", req.page),
			slog.String("current", c.query))
		return
	}
	c.pending = nil
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.loading = Idle

	if err != nil {
		c.errMsg = engine.UserMessage(err)
		slog.Warn("browse: fetch failed",
			slog.String("query", req.query), slog.Int("page", req.page), slog.Any("error", err))
		c.publishLocked()
		return
	}

	videos := catalog.NewVideos(entries, req.speed)
	if req.page == 1 {
		c.videos = videos
		c.firstLoaded = true
	} else {
		c.videos = append(c.videos, videos...)
	}
	c.page = req.page
	c.hasMore = len(entries) >= req.perPage
	c.publishLocked()
}

// SelectVideo opens the overlay for the result with id. It reports whether
// the id is in the current ResultSet.
func (c *Controller) SelectVideo(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.videos {
		if c.videos[i].ID == id {
			v := c.videos[i]
			c.selected = &v
			c.publishLocked()
			return true
		}
	}
	return false
}

// ShowVideo opens the overlay for v even if it is not in the ResultSet.
func (c *Controller) ShowVideo(v catalog.Video) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &v
	c.publishLocked()
}

// ClearSelection closes the overlay.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return
	}
	c.selected = nil
	c.publishLocked()
}

// SetViewport records the viewport width used to size the next request.
func (c *Controller) SetViewport(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width < 0 || width == c.width {
		return
	}
	c.width = width
	c.publishLocked()
}

// SetNetworkSpeed records the estimate used to pick files on the next page.
func (c *Controller) SetNetworkSpeed(speed catalog.NetworkSpeed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if speed == c.speed {
		return
	}
	c.speed = speed
	c.publishLocked()
}

// NetworkSpeed returns the current estimate.
func (c *Controller) NetworkSpeed() catalog.NetworkSpeed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := State{
		Term:      c.term,
		Query:     c.query,
		Page:      c.page,
		Videos:    slices.Clone(c.videos),
		HasMore:   c.hasMore,
		Loading:   c.loading,
		Error:     c.errMsg,
		PerPage:   catalog.PerPage(c.width),
		Skeletons: catalog.SkeletonCount(c.width),
		Network:   c.speed.String(),
		Version:   c.version,
	}
	if s.Videos == nil {
		s.Videos = []catalog.Video{}
	}
	if c.selected != nil {
		v := *c.selected
		s.Selected = &v
	}
	return s
}

// Subscribe returns a channel that always holds the latest State. Slow
// readers skip intermediate states. The current state is delivered first.
// The channel is closed by cancel or Close.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan State, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publishLocked bumps the version and hands the new state to subscribers
// without blocking, replacing any state they have not read yet.
func (c *Controller) publishLocked() {
	c.version++
	if len(c.subs) == 0 {
		return
	}
	s := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Close stops the debounce timer, cancels any fetch and closes subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = nil
	c.stop()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}
