package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/society-committee-api/internal/cache"
	"github.com/yukikurage/society-committee-api/internal/constants"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"github.com/yukikurage/society-committee-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NumberSource names where a committee number was resolved from.
type NumberSource string

const (
	NumberSourceStaged     NumberSource = "staged"
	NumberSourceLedger     NumberSource = "ledger"
	NumberSourceCache      NumberSource = "cache"
	NumberSourceTransition NumberSource = "transition"
	NumberSourceClock      NumberSource = "clock"
)

// ClaimedNumber is the committee number given to a new ledger row.
type ClaimedNumber struct {
	Number string
	Source NumberSource
}

// Numbering resolves the committee number of the running cycle.
type Numbering struct {
	cache  cache.NumberCache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewNumbering creates a Numbering. A nil cache falls back to an in-process one.
func NewNumbering(numberCache cache.NumberCache, ttl time.Duration, logger *zap.Logger) *Numbering {
	if numberCache == nil {
		numberCache = cache.NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = constants.DefaultCommitteeNumberTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Numbering{
		cache:  numberCache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the time source used for the fallback label.
func (n *Numbering) WithClock(now func() time.Time) *Numbering {
	n.now = now
	return n
}

// Current resolves the number through ledger, cache, transition log and clock.
func (n *Numbering) Current(ctx context.Context, store repository.Store) (string, NumberSource, error) {
	latest, err := store.Assignments().LatestCurrent(ctx)
	switch {
	case err == nil && latest.CommitteeNumber != "":
		return latest.CommitteeNumber, NumberSourceLedger, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return "", "", fmt.Errorf("failed to read current assignment: %w", err)
	}

	cached, ok, err := n.cache.Get(ctx)
	if err != nil {
		n.logger.Warn("committee number cache read failed", zap.Error(err))
	} else if ok && cached != "" {
		return cached, NumberSourceCache, nil
	}

	transition, err := store.Transitions().Latest(ctx)
	switch {
	case err == nil && transition.NewCommitteeNumber != "":
		n.Remember(ctx, transition.NewCommitteeNumber)
		return transition.NewCommitteeNumber, NumberSourceTransition, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return "", "", fmt.Errorf("failed to read tenure transitions: %w", err)
	}

	return utils.AcademicYearLabel(n.now()), NumberSourceClock, nil
}

// Claim resolves the number for a new ledger row. A staged value only opens
// a cycle: once a current row exists every new row shares its number, and the
// caller keeps the staged value until a row actually claims it.
func (n *Numbering) Claim(ctx context.Context, store repository.Store, staged string) (ClaimedNumber, error) {
	if staged = utils.NormalizeCommitteeNumber(staged); staged != "" {
		latest, err := store.Assignments().LatestCurrent(ctx)
		switch {
		case err == nil && latest.CommitteeNumber != "":
			return ClaimedNumber{Number: latest.CommitteeNumber, Source: NumberSourceLedger}, nil
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return ClaimedNumber{}, fmt.Errorf("failed to read current assignment: %w", err)
		}

		archived, err := store.Archive().CountByNumber(ctx, staged)
		if err != nil {
			return ClaimedNumber{}, fmt.Errorf("failed to check archived committee: %w", err)
		}
		if archived > 0 {
			return ClaimedNumber{}, ErrCommitteeNumberArchived
		}
		return ClaimedNumber{Number: staged, Source: NumberSourceStaged}, nil
	}

	number, source, err := n.Current(ctx, store)
	if err != nil {
		return ClaimedNumber{}, err
	}
	return ClaimedNumber{Number: number, Source: source}, nil
}

// Remember stores number in the cache. Failures are logged only; the
// transition log can rebuild the value.
func (n *Numbering) Remember(ctx context.Context, number string) {
	if err := n.cache.Set(ctx, number, n.ttl); err != nil {
		n.logger.Warn("committee number cache write failed",
			zap.String("committee_number", number),
			zap.Error(err),
		)
	}
}

// ValidateCommitteeNumber trims raw and checks it is present and short enough to store.
func ValidateCommitteeNumber(raw string) (string, error) {
	number := utils.NormalizeCommitteeNumber(raw)
	if number == "" {
		return "", ErrCommitteeNumberRequired
	}
	if utf8.RuneCountInString(number) > constants.MaxCommitteeNumberLength {
		return "", ErrCommitteeNumberTooLong
	}
	return number, nil
}
