package offers

import (
	"context"
	"sync"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/logger"
)

// Fetcher returns one page of offers for a query. Failures are reported
// as an empty page.
type Fetcher interface {
	FetchBankOffers(ctx context.Context, query string, page int) []domain.BankOffer
}

// State describes what a feed is showing.
type State string

const (
	StateIdle        State = "IDLE"
	StateEmptyWallet State = "EMPTY_WALLET"
	StateNoResults   State = "NO_RESULTS"
	StateResults     State = "RESULTS"
)

// Snapshot is a point-in-time copy of a feed.
type Snapshot struct {
	State  State              `json:"state"`
	Query  string             `json:"query"`
	Page   int                `json:"page"`
	Offers []domain.BankOffer `json:"offers"`
	// Stale is set when the fetch this call made was superseded by a
	// newer Search and its results were dropped.
	Stale bool `json:"stale,omitempty"`
}

// Feed is a paged offer list. Every Search starts a new generation; a
// fetch that completes after its generation was replaced is discarded, so
// a slow response can never overwrite results for a newer search.
type Feed struct {
	fetcher Fetcher
	now     func() time.Time

	mu         sync.Mutex
	generation uint64
	state      State
	query      string
	page       int
	offers     []domain.BankOffer
}

// NewFeed returns an idle feed.
func NewFeed(fetcher Fetcher) *Feed {
	return &Feed{fetcher: fetcher, now: time.Now, state: StateIdle}
}

// Search replaces the feed contents with page 1 of a new query.
func (f *Feed) Search(ctx context.Context, mode Mode, cards []domain.SavedCard, term string) Snapshot {
	query, ok := BuildQuery(mode, cards, term, f.now())

	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.query = query
	f.page = 1
	f.offers = nil
	if !ok {
		f.state = UnsearchableState(term)
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap
	}
	f.mu.Unlock()

	page := f.fetcher.FetchBankOffers(ctx, query, 1)
	return f.apply(ctx, gen, 1, page)
}

// LoadMore fetches the next page of the current query and appends the
// offers not already shown. It does nothing before a successful Search.
func (f *Feed) LoadMore(ctx context.Context) Snapshot {
	f.mu.Lock()
	if f.query == "" {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap
	}
	gen := f.generation
	query := f.query
	next := f.page + 1
	f.mu.Unlock()

	page := f.fetcher.FetchBankOffers(ctx, query, next)
	return f.apply(ctx, gen, next, page)
}

// Snapshot returns the current contents.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Feed) apply(ctx context.Context, gen uint64, page int, offers []domain.BankOffer) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		log := logger.FromContext(ctx)
		log.Debug().Uint64("generation", gen).Uint64("current", f.generation).Int("page", page).Msg("Dropping stale offers page")
		snap := f.snapshotLocked()
		snap.Stale = true
		return snap
	}

	if page > f.page {
		f.page = page
	}
	f.offers = Merge(f.offers, offers)
	if len(f.offers) == 0 {
		f.state = StateNoResults
	} else {
		f.state = StateResults
	}
	return f.snapshotLocked()
}

func (f *Feed) snapshotLocked() Snapshot {
	return Snapshot{
		State:  f.state,
		Query:  f.query,
		Page:   f.page,
		Offers: append([]domain.BankOffer{}, f.offers...),
	}
}
