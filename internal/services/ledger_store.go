// internal/services/ledger_store.go
package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/royalty-ledger/internal/models"
)

type LedgerStatus string

const (
	LedgerStatusIdle    LedgerStatus = "idle"
	LedgerStatusLoading LedgerStatus = "loading"
	LedgerStatusReady   LedgerStatus = "ready"
	LedgerStatusError   LedgerStatus = "error"
)

// LedgerSnapshot is the ledger of one track as last read from the database.
type LedgerSnapshot struct {
	MusicID         uuid.UUID                     `json:"music_id"`
	Licenses        []models.LicenseWithRelations `json:"licenses"`
	RoyaltyPayments []models.PaymentWithRelations `json:"royalty_payments"`
	RoyaltyClaims   []models.ClaimWithRelations   `json:"royalty_claims"`
	Status          LedgerStatus                  `json:"status"`
	Error           string                        `json:"error,omitempty"`
}

// LedgerStore holds the ledger of the track a session is looking at. Each
// session owns its own store; the collections are only replaced by FetchAll.
type LedgerStore struct {
	repo   LedgerRepository
	engine *ReconciliationService
	logger *logrus.Logger

	mu          sync.RWMutex
	musicID     uuid.UUID
	licenses    []models.LicenseWithRelations
	payments    []models.PaymentWithRelations
	claims      []models.ClaimWithRelations
	status      LedgerStatus
	err         error
	subscribers map[int]func(LedgerSnapshot)
	nextSubID   int
}

func NewLedgerStore(repo LedgerRepository, engine *ReconciliationService, logger *logrus.Logger) *LedgerStore {
	return &LedgerStore{
		repo:        repo,
		engine:      engine,
		logger:      logger,
		status:      LedgerStatusIdle,
		subscribers: make(map[int]func(LedgerSnapshot)),
	}
}

// FetchAll re-reads licenses, royalty payments and royalty claims of a track
// concurrently. A failed read keeps that collection at its previous value
// (or empty, if the store was showing another track) and does not stop the
// other two. The first failure is returned and exposed through Err.
func (s *LedgerStore) FetchAll(ctx context.Context, musicID uuid.UUID) error {
	s.mu.Lock()
	if s.musicID != musicID {
		s.musicID = musicID
		s.licenses, s.payments, s.claims = nil, nil, nil
	}
	s.status = LedgerStatusLoading
	s.err = nil
	s.mu.Unlock()
	s.notify()

	var (
		licenses                            []models.LicenseWithRelations
		payments                            []models.PaymentWithRelations
		claims                              []models.ClaimWithRelations
		licensesErr, paymentsErr, claimsErr error
	)

	// Each read reports its own error so one failure does not cancel the rest.
	var g errgroup.Group
	g.Go(func() error {
		licenses, licensesErr = s.repo.ListLicenses(ctx, musicID)
		return nil
	})
	g.Go(func() error {
		payments, paymentsErr = s.repo.ListRoyaltyPayments(ctx, musicID)
		return nil
	})
	g.Go(func() error {
		claims, claimsErr = s.repo.ListRoyaltyClaims(ctx, musicID)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	if s.musicID != musicID {
		// Another fetch switched tracks while this one was running.
		s.mu.Unlock()
		return nil
	}
	if licensesErr == nil {
		s.licenses = licenses
	}
	if paymentsErr == nil {
		s.payments = payments
	}
	if claimsErr == nil {
		s.claims = claims
	}

	firstErr, _ := lo.Find([]error{licensesErr, paymentsErr, claimsErr}, func(err error) bool {
		return err != nil
	})
	if firstErr != nil {
		s.status = LedgerStatusError
		s.err = firstErr
		s.logger.WithError(firstErr).WithFields(logrus.Fields{
			"music_id":        musicID,
			"licenses_failed": licensesErr != nil,
			"payments_failed": paymentsErr != nil,
			"claims_failed":   claimsErr != nil,
		}).Warn("Ledger fetch failed")
	} else {
		s.status = LedgerStatusReady
	}
	s.mu.Unlock()
	s.notify()

	return firstErr
}

// Snapshot returns a deep copy of the current ledger. Callers may modify it
// freely, including the related tracks and accounts.
func (s *LedgerStore) Snapshot() LedgerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *LedgerStore) snapshotLocked() LedgerSnapshot {
	snap := LedgerSnapshot{
		MusicID:         s.musicID,
		Licenses:        lo.Map(s.licenses, func(l models.LicenseWithRelations, _ int) models.LicenseWithRelations { return cloneLicense(l) }),
		RoyaltyPayments: lo.Map(s.payments, func(p models.PaymentWithRelations, _ int) models.PaymentWithRelations { return clonePayment(p) }),
		RoyaltyClaims:   lo.Map(s.claims, func(c models.ClaimWithRelations, _ int) models.ClaimWithRelations { return cloneClaim(c) }),
		Status:          s.status,
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

func (s *LedgerStore) Status() LedgerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the first error of the last fetch.
func (s *LedgerStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Subscribe registers fn to receive a snapshot after every state change.
// Calling the returned function unsubscribes.
func (s *LedgerStore) Subscribe(fn func(LedgerSnapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *LedgerStore) notify() {
	s.mu.RLock()
	snap := s.snapshotLocked()
	subscribers := lo.Values(s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

// MintLicense runs the mint workflow and refreshes this store.
func (s *LedgerStore) MintLicense(ctx context.Context, musicID, licensorAccountID uuid.UUID) (*MintLicenseResult, error) {
	return s.engine.MintLicense(ctx, s, musicID, licensorAccountID)
}

func (s *LedgerStore) PayRoyalty(ctx context.Context, musicID, licenseID uuid.UUID, amount string) (*PayRoyaltyResult, error) {
	return s.engine.PayRoyalty(ctx, s, musicID, licenseID, amount)
}

func (s *LedgerStore) ClaimRoyalty(ctx context.Context, musicID uuid.UUID, ipID string) (*ClaimRevenueResult, error) {
	return s.engine.ClaimRevenue(ctx, s, musicID, ipID)
}

func (s *LedgerStore) Tip(ctx context.Context, musicID, accountID uuid.UUID, amount string) (*TipResult, error) {
	return s.engine.Tip(ctx, s, musicID, accountID, amount)
}

func cloneLicense(l models.LicenseWithRelations) models.LicenseWithRelations {
	l.Music = cloneMusic(l.Music)
	l.Licensor = cloneAccount(l.Licensor)
	return l
}

func clonePayment(p models.PaymentWithRelations) models.PaymentWithRelations {
	if p.License != nil {
		license := cloneLicense(*p.License)
		p.License = &license
	}
	return p
}

func cloneClaim(c models.ClaimWithRelations) models.ClaimWithRelations {
	c.Music = cloneMusic(c.Music)
	return c
}

func cloneMusic(m *models.Music) *models.Music {
	if m == nil {
		return nil
	}
	c := *m
	c.IPID = cloneString(m.IPID)
	c.LicenseTermsID = cloneString(m.LicenseTermsID)
	c.Account = cloneAccount(m.Account)
	return &c
}

func cloneAccount(a *models.Account) *models.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
