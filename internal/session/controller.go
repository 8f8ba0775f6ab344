package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"partshop/storefront/internal/domain"
	"partshop/storefront/internal/suggest"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle                State = "idle"
	StateDebouncing          State = "debouncing"
	StateFetchingSuggestions State = "fetching_suggestions"
	StateExecutingSearch     State = "executing_search"
)

const DefaultDebounce = 300 * time.Millisecond

// RecentLog is the part of recent.Store a session writes to.
type RecentLog interface {
	Record(ctx context.Context, term string) error
	Items() []string
}

type Options struct {
	Debounce       time.Duration
	MinQueryLength int         // Shorter queries never reach the backend; 0 means suggest.DefaultMinQueryLength
	PageSize       int         // 0 lets the catalog pick its default
	Clock          clock.Clock // nil means the wall clock
}

// Snapshot is a consistent copy of the session as the presentation layer
// should render it.
type Snapshot struct {
	State       State                     `json:"state"`
	Query       string                    `json:"query"`
	Suggestions []domain.SearchSuggestion `json:"suggestions"`
	Results     *domain.SearchPage        `json:"results,omitempty"`
	Loading     bool                      `json:"loading"`
}

// Controller drives one search box: debounced suggestions while typing and
// immediate catalog searches on submit.
//
// Suggestion fetches are numbered when issued. A response is applied only if
// it carries the latest number and the query has not changed since, so a slow
// early fetch can never overwrite a newer one.
type Controller struct {
	backend  Backend
	recent   RecentLog
	clock    clock.Clock
	debounce time.Duration
	minQuery int
	pageSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       State
	query       string
	suggestions []domain.SearchSuggestion
	results     *domain.SearchPage
	loading     bool
	timer       *clock.Timer
	timerToken  uint64
	suggestSeq  uint64
	searchSeq   uint64
	onChange    func(Snapshot)
}

func New(backend Backend, recent RecentLog, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinQueryLength < 1 {
		opts.MinQueryLength = suggest.DefaultMinQueryLength
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend:     backend,
		recent:      recent,
		clock:       opts.Clock,
		debounce:    opts.Debounce,
		minQuery:    opts.MinQueryLength,
		pageSize:    opts.PageSize,
		ctx:         ctx,
		cancel:      cancel,
		state:       StateIdle,
		suggestions: []domain.SearchSuggestion{},
	}
}

// OnChange registers a listener invoked with a fresh snapshot after every
// transition. It is called outside the controller's lock.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// RecentSuggestions offers the recent-query log, for an empty search box.
func (c *Controller) RecentSuggestions() []domain.SearchSuggestion {
	if c.recent == nil {
		return []domain.SearchSuggestion{}
	}
	return suggest.RecentSuggestions(c.recent.Items())
}

// Type handles a keystroke. Every call restarts the debounce timer; only the
// last keystroke's timer fires. Typing the box empty is a Clear.
func (c *Controller) Type(query string) {
	if strings.TrimSpace(query) == "" {
		c.Clear()
		return
	}

	c.mu.Lock()
	c.query = query
	c.state = StateDebouncing
	c.stopTimerLocked()
	token := c.timerToken
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.debounceElapsed(token) })
	snap := c.snapshotLocked()
	listener := c.onChange
	c.mu.Unlock()

	notify(listener, snap)
}

func (c *Controller) debounceElapsed(token uint64) {
	c.mu.Lock()
	if token != c.timerToken || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.suggestSeq++
	seq := c.suggestSeq
	query := c.query

	if utf8.RuneCountInString(strings.TrimSpace(query)) < c.minQuery {
		c.suggestions = []domain.SearchSuggestion{}
		if c.state == StateDebouncing {
			c.state = StateIdle
		}
		snap := c.snapshotLocked()
		listener := c.onChange
		c.mu.Unlock()

		notify(listener, snap)
		return
	}

	if c.state == StateDebouncing {
		c.state = StateFetchingSuggestions
	}
	snap := c.snapshotLocked()
	listener := c.onChange
	c.wg.Add(1)
	c.mu.Unlock()

	notify(listener, snap)

	go func() {
		defer c.wg.Done()
		c.fetchSuggestions(seq, query)
	}()
}

func (c *Controller) fetchSuggestions(seq uint64, query string) {
	suggestions, err := c.backend.Suggestions(c.ctx, query)
	if err != nil {
		log.Warnf("⚠️ Suggestions for %q failed: %v", query, err)
		suggestions = []domain.SearchSuggestion{}
	}
	if suggestions == nil {
		suggestions = []domain.SearchSuggestion{}
	}

	c.mu.Lock()
	if seq != c.suggestSeq || query != c.query {
		c.mu.Unlock()
		log.Debugf("Discarding stale suggestions #%d for %q", seq, query)
		return
	}
	c.suggestions = suggestions
	if c.state == StateFetchingSuggestions {
		c.state = StateIdle
	}
	snap := c.snapshotLocked()
	listener := c.onChange
	c.mu.Unlock()

	notify(listener, snap)
}

// Submit runs a catalog search for query right away, cancelling any pending
// debounce. On success the term is recorded in the recent-query log; on
// failure the previous results are kept. The session returns to idle either way.
func (c *Controller) Submit(ctx context.Context, query string) (*domain.SearchPage, error) {
	c.mu.Lock()
	c.query = query
	c.stopTimerLocked()
	c.state = StateExecutingSearch
	c.loading = true
	c.searchSeq++
	seq := c.searchSeq
	snap := c.snapshotLocked()
	listener := c.onChange
	c.mu.Unlock()

	notify(listener, snap)

	filter := domain.ProductFilter{
		Text:  strings.TrimSpace(query),
		Sort:  domain.SortRelevance,
		Page:  1,
		Limit: c.pageSize,
	}
	page, err := c.backend.Search(ctx, filter)

	c.mu.Lock()
	if seq != c.searchSeq {
		// Cleared or superseded while in flight.
		c.mu.Unlock()
		return page, err
	}
	if err == nil {
		c.results = page
	}
	c.loading = false
	if c.state == StateExecutingSearch {
		c.state = StateIdle
	}
	snap = c.snapshotLocked()
	listener = c.onChange
	c.mu.Unlock()

	notify(listener, snap)

	if err != nil {
		log.Warnf("⚠️ Search for %q failed: %v", query, err)
		return nil, err
	}

	if c.recent != nil {
		if rerr := c.recent.Record(ctx, query); rerr != nil {
			log.Warnf("⚠️ Failed to record recent search %q: %v", query, rerr)
		}
	}
	return page, nil
}

// Clear resets query, suggestions and results in one step. Responses still
// in flight are discarded when they arrive.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.stopTimerLocked()
	c.suggestSeq++
	c.searchSeq++
	c.query = ""
	c.suggestions = []domain.SearchSuggestion{}
	c.results = nil
	c.loading = false
	c.state = StateIdle
	snap := c.snapshotLocked()
	listener := c.onChange
	c.mu.Unlock()

	notify(listener, snap)
}

// Close stops the debounce timer, cancels in-flight fetches and waits for
// them to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopTimerLocked()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Controller) stopTimerLocked() {
	c.timerToken++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	suggestions := make([]domain.SearchSuggestion, len(c.suggestions))
	copy(suggestions, c.suggestions)
	return Snapshot{
		State:       c.state,
		Query:       c.query,
		Suggestions: suggestions,
		Results:     c.results,
		Loading:     c.loading,
	}
}

func notify(listener func(Snapshot), snap Snapshot) {
	if listener != nil {
		listener(snap)
	}
}
