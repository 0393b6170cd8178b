package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/google/uuid"
)

// DefaultKey is the blob key the application state lives under.
const DefaultKey = "finsight_data_v2"

const defaultMaxRetries = 5

// AccountColors is the palette new accounts cycle through.
var AccountColors = []string{"#6366f1", "#ec4899", "#10b981", "#f59e0b", "#8b5cf6", "#06b6d4"}

// Repository is the single owner of the persisted AppData. Every mutation
// is a read-modify-write through Update.
type Repository struct {
	blobs      BlobStore
	key        string
	maxRetries int
	now        func() time.Time
	newID      func() string
}

// Option configures a Repository.
type Option func(*Repository)

// WithKey overrides the blob key.
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// WithMaxRetries sets how many times Update retries after a conflict.
func WithMaxRetries(n int) Option {
	return func(r *Repository) { r.maxRetries = n }
}

// NewRepository returns a repository over blobs.
func NewRepository(blobs BlobStore, opts ...Option) *Repository {
	r := &Repository{
		blobs:      blobs,
		key:        DefaultKey,
		maxRetries: defaultMaxRetries,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// read returns the stored state and its revision. A missing blob is the
// default state at NoRevision. A corrupt blob is also the default state,
// but at its real revision so the next write replaces it.
func (r *Repository) read(ctx context.Context) (*domain.AppData, int64, error) {
	log := logger.FromContext(ctx)

	raw, rev, err := r.blobs.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return domain.NewAppData(), NoRevision, nil
	}
	if err != nil {
		return nil, 0, err
	}

	data := domain.NewAppData()
	if err := json.Unmarshal(raw, data); err != nil {
		log.Warn().Err(err).Str("key", r.key).Int64("revision", rev).Msg("Stored data is unreadable, using defaults")
		return domain.NewAppData(), rev, nil
	}
	return data, rev, nil
}

// Load returns the persisted state, or the empty default when the blob
// is absent, corrupt or cannot be read. Failures are logged only.
func (r *Repository) Load(ctx context.Context) *domain.AppData {
	data, _, err := r.read(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("key", r.key).Msg("Failed to load data, using defaults")
		return domain.NewAppData()
	}
	return data
}

// Save overwrites the persisted state. Last write wins.
func (r *Repository) Save(ctx context.Context, data *domain.AppData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("Save: marshal app data: %w", err)
	}
	if _, err := r.blobs.Put(ctx, r.key, raw, AnyRevision); err != nil {
		return fmt.Errorf("Save: write blob: %w", err)
	}
	return nil
}

// Update loads the state, applies fn and writes it back guarded by the
// revision that was read. On a conflict the whole cycle is repeated on
// fresh data. If fn returns an error nothing is written.
func (r *Repository) Update(ctx context.Context, fn func(*domain.AppData) error) error {
	log := logger.FromContext(ctx)

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		data, rev, err := r.read(ctx)
		if err != nil {
			return fmt.Errorf("Update: read blob: %w", err)
		}
		if err := fn(data); err != nil {
			return err
		}

		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("Update: marshal app data: %w", err)
		}

		_, err = r.blobs.Put(ctx, r.key, raw, rev)
		if errors.Is(err, ErrConflict) {
			log.Debug().Int("attempt", attempt+1).Int64("revision", rev).Msg("Concurrent write detected, retrying")
			continue
		}
		if err != nil {
			return fmt.Errorf("Update: write blob: %w", err)
		}
		return nil
	}

	return fmt.Errorf("Update: gave up after %d attempts: %w", r.maxRetries+1, ErrConflict)
}

// Accounts returns every account in creation order.
func (r *Repository) Accounts(ctx context.Context) []domain.Account {
	return r.Load(ctx).Accounts
}

// Reports returns reports for accountID, or all reports when it is empty.
// Newest reports come first.
func (r *Repository) Reports(ctx context.Context, accountID string) []domain.SavedReport {
	return r.Load(ctx).ReportsForAccount(accountID)
}

// SavedCards returns the cards in the wallet.
func (r *Repository) SavedCards(ctx context.Context) []domain.SavedCard {
	return r.Load(ctx).SavedCards
}

// CreateAccount appends a new account. Its colour is picked round-robin
// from AccountColors by the number of existing accounts.
func (r *Repository) CreateAccount(ctx context.Context, name string, typ domain.AccountType) (domain.Account, error) {
	var created domain.Account
	err := r.Update(ctx, func(data *domain.AppData) error {
		created = domain.Account{
			ID:    r.newID(),
			Name:  name,
			Type:  typ,
			Color: AccountColors[len(data.Accounts)%len(AccountColors)],
		}
		data.Accounts = append(data.Accounts, created)
		return nil
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("CreateAccount: %w", err)
	}
	return created, nil
}

// DeleteAccount removes the account and every report attached to it.
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	err := r.Update(ctx, func(data *domain.AppData) error {
		accounts := data.Accounts[:0]
		for _, a := range data.Accounts {
			if a.ID != id {
				accounts = append(accounts, a)
			}
		}
		data.Accounts = accounts

		reports := data.Reports[:0]
		for _, rep := range data.Reports {
			if rep.AccountID != id {
				reports = append(reports, rep)
			}
		}
		data.Reports = reports
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	return nil
}

// SaveReport stores analysis as the newest report of accountID.
func (r *Repository) SaveReport(ctx context.Context, accountID string, analysis domain.FinancialAnalysis, fileName string) (domain.SavedReport, error) {
	var saved domain.SavedReport
	err := r.Update(ctx, func(data *domain.AppData) error {
		saved = domain.SavedReport{
			ID:           r.newID(),
			AccountID:    accountID,
			FileName:     fileName,
			AnalysisDate: r.now().UTC().Format(time.RFC3339),
			Data:         analysis,
		}
		data.Reports = append([]domain.SavedReport{saved}, data.Reports...)
		return nil
	})
	if err != nil {
		return domain.SavedReport{}, fmt.Errorf("SaveReport: %w", err)
	}
	return saved, nil
}

// DeleteReport removes a report. Unknown ids are ignored.
func (r *Repository) DeleteReport(ctx context.Context, id string) error {
	err := r.Update(ctx, func(data *domain.AppData) error {
		reports := data.Reports[:0]
		for _, rep := range data.Reports {
			if rep.ID != id {
				reports = append(reports, rep)
			}
		}
		data.Reports = reports
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteReport: %w", err)
	}
	return nil
}

// SaveCard adds card to the wallet, assigning an id when it has none.
func (r *Repository) SaveCard(ctx context.Context, card domain.SavedCard) (domain.SavedCard, error) {
	if card.ID == "" {
		card.ID = r.newID()
	}
	err := r.Update(ctx, func(data *domain.AppData) error {
		data.SavedCards = append(data.SavedCards, card)
		return nil
	})
	if err != nil {
		return domain.SavedCard{}, fmt.Errorf("SaveCard: %w", err)
	}
	return card, nil
}

// DeleteCard removes a card from the wallet. Unknown ids are ignored.
func (r *Repository) DeleteCard(ctx context.Context, id string) error {
	err := r.Update(ctx, func(data *domain.AppData) error {
		cards := data.SavedCards[:0]
		for _, c := range data.SavedCards {
			if c.ID != id {
				cards = append(cards, c)
			}
		}
		data.SavedCards = cards
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteCard: %w", err)
	}
	return nil
}
