// internal/services/ledger_store_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/database"
	"github.com/javajoker/royalty-ledger/internal/logging"
	"github.com/javajoker/royalty-ledger/internal/services"
)

func newStore(t *testing.T) (*services.LedgerStore, *faultyRepo, uuid.UUID) {
	t.Helper()
	db := openTestDB(t)
	repo := &faultyRepo{LedgerRepository: database.NewLedgerRepository(db)}
	logger := logging.Discard()
	engine := services.NewReconciliationService(repo, newFakeChain(), config.DefaultChainConfig(), logger)

	owner := createAccount(t, db, "owner")
	listener := createAccount(t, db, "listener")
	track := createTrack(t, db, owner)
	license := createLicense(t, db, track, listener)
	createPayment(t, db, track, license, "1")

	return services.NewLedgerStore(repo, engine, logger), repo, track.ID
}

func TestLedgerStoreStartsIdle(t *testing.T) {
	store, _, _ := newStore(t)

	assert.Equal(t, services.LedgerStatusIdle, store.Status())
	assert.NoError(t, store.Err())
	assert.Empty(t, store.Snapshot().Licenses)
}

func TestLedgerStoreFetchAllIsIdempotent(t *testing.T) {
	store, _, musicID := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.FetchAll(ctx, musicID))
	first := store.Snapshot()
	require.NoError(t, store.FetchAll(ctx, musicID))
	second := store.Snapshot()

	assert.Equal(t, services.LedgerStatusReady, second.Status)
	assert.Len(t, second.Licenses, 1)
	assert.Len(t, second.RoyaltyPayments, 1)
	assert.Empty(t, second.RoyaltyClaims)
	assert.Equal(t, first.Licenses[0].ID, second.Licenses[0].ID)
	assert.Equal(t, first.RoyaltyPayments[0].ID, second.RoyaltyPayments[0].ID)
}

func TestLedgerStorePartialFailureKeepsOtherCollections(t *testing.T) {
	store, repo, musicID := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.FetchAll(ctx, musicID))

	repo.failLicenses = true
	err := store.FetchAll(ctx, musicID)

	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, services.LedgerStatusError, store.Status())
	assert.ErrorIs(t, store.Err(), errInjected)

	snapshot := store.Snapshot()
	assert.Len(t, snapshot.Licenses, 1, "failed collection keeps its previous value")
	assert.Len(t, snapshot.RoyaltyPayments, 1)
	assert.NotEmpty(t, snapshot.Error)

	// The error is cleared by the next successful fetch
	repo.failLicenses = false
	require.NoError(t, store.FetchAll(ctx, musicID))
	assert.NoError(t, store.Err())
	assert.Equal(t, services.LedgerStatusReady, store.Status())
}

func TestLedgerStoreFailureOnNewTrackStartsEmpty(t *testing.T) {
	store, repo, musicID := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.FetchAll(ctx, musicID))

	repo.failPayments = true
	err := store.FetchAll(ctx, uuid.New())

	require.Error(t, err)
	snapshot := store.Snapshot()
	assert.Empty(t, snapshot.Licenses)
	assert.Empty(t, snapshot.RoyaltyPayments)
}

func TestLedgerStoreNotifiesSubscribers(t *testing.T) {
	store, _, musicID := newStore(t)

	var statuses []services.LedgerStatus
	unsubscribe := store.Subscribe(func(snapshot services.LedgerSnapshot) {
		statuses = append(statuses, snapshot.Status)
	})

	require.NoError(t, store.FetchAll(context.Background(), musicID))
	assert.Equal(t, []services.LedgerStatus{services.LedgerStatusLoading, services.LedgerStatusReady}, statuses)

	unsubscribe()
	require.NoError(t, store.FetchAll(context.Background(), musicID))
	assert.Len(t, statuses, 2)
}

func TestLedgerStoreSnapshotIsACopy(t *testing.T) {
	store, _, musicID := newStore(t)
	require.NoError(t, store.FetchAll(context.Background(), musicID))

	snapshot := store.Snapshot()
	snapshot.Licenses = nil
	snapshot.RoyaltyPayments[0].IsClaimed = true

	fresh := store.Snapshot()
	assert.Len(t, fresh.Licenses, 1)
	assert.False(t, fresh.RoyaltyPayments[0].IsClaimed)
}

func TestLedgerStoreSnapshotCopiesRelations(t *testing.T) {
	store, _, musicID := newStore(t)
	require.NoError(t, store.FetchAll(context.Background(), musicID))

	snapshot := store.Snapshot()
	require.NotNil(t, snapshot.Licenses[0].Music)
	require.NotNil(t, snapshot.Licenses[0].Music.Account)
	require.NotNil(t, snapshot.Licenses[0].Licensor)
	require.NotNil(t, snapshot.RoyaltyPayments[0].License)
	require.NotNil(t, snapshot.RoyaltyPayments[0].License.Licensor)

	title := snapshot.Licenses[0].Music.Title
	ipID := *snapshot.Licenses[0].Music.IPID
	snapshot.Licenses[0].Music.Title = "changed"
	*snapshot.Licenses[0].Music.IPID = "0x0"
	snapshot.Licenses[0].Music.Account.Username = "changed"
	snapshot.Licenses[0].Licensor.Username = "changed"
	snapshot.RoyaltyPayments[0].License.Licensor.Username = "changed"

	fresh := store.Snapshot()
	assert.Equal(t, title, fresh.Licenses[0].Music.Title)
	assert.Equal(t, ipID, *fresh.Licenses[0].Music.IPID)
	assert.Equal(t, "owner", fresh.Licenses[0].Music.Account.Username)
	assert.Equal(t, "listener", fresh.Licenses[0].Licensor.Username)
	assert.Equal(t, "listener", fresh.RoyaltyPayments[0].License.Licensor.Username)
}

func TestLedgerStoreWorkflowsRefreshSnapshot(t *testing.T) {
	db := openTestDB(t)
	repo := database.NewLedgerRepository(db)
	logger := logging.Discard()
	engine := services.NewReconciliationService(repo, newFakeChain(), config.DefaultChainConfig(), logger)
	store := services.NewLedgerStore(repo, engine, logger)
	ctx := context.Background()

	owner := createAccount(t, db, "owner")
	listener := createAccount(t, db, "listener")
	track := createTrack(t, db, owner)

	minted, err := store.MintLicense(ctx, track.ID, listener.ID)
	require.NoError(t, err)
	require.NoError(t, minted.RefreshErr)
	assert.Len(t, store.Snapshot().Licenses, 1)
	assert.Equal(t, track.ID, store.Snapshot().MusicID)

	paid, err := store.PayRoyalty(ctx, track.ID, minted.License.ID, "5")
	require.NoError(t, err)
	require.NoError(t, paid.RefreshErr)
	require.Len(t, store.Snapshot().RoyaltyPayments, 1)
	assert.False(t, store.Snapshot().RoyaltyPayments[0].IsClaimed)

	claimed, err := store.ClaimRoyalty(ctx, track.ID, *track.IPID)
	require.NoError(t, err)
	require.NoError(t, claimed.RefreshErr)
	assert.True(t, claimed.Claim.Amount.Equal(decimal.RequireFromString("0.5")))

	snapshot := store.Snapshot()
	assert.Equal(t, services.LedgerStatusReady, snapshot.Status)
	assert.Len(t, snapshot.RoyaltyClaims, 1)
	assert.True(t, snapshot.RoyaltyPayments[0].IsClaimed)
}
