package lifecycle_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelling/internal/audit"
	"channelling/internal/lifecycle"
	"channelling/internal/lifecycle/store/memory"
	dErrors "channelling/pkg/domain-errors"
	"channelling/pkg/testutil"
)

type state struct {
	lifecycle.Envelope
	Name      string `json:"name" validate:"required,max=100"`
	CountryID int64  `json:"country_id" validate:"required"`
}

var stateDescriptor = lifecycle.Descriptor[*state]{
	Name: "state",
	New:  func() *state { return &state{} },
	CopyFields: func(dst, src *state) {
		dst.Name = src.Name
		dst.CountryID = src.CountryID
	},
	References: []string{"country_id"},
}

type fixture struct {
	countries *lifecycle.Manager[*country]
	states    *lifecycle.Manager[*state]
	store     *memory.InMemory[*country]
	sink      *audit.MemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sink := audit.NewMemorySink()
	pub := audit.NewPublisher(sink)
	t.Cleanup(pub.Close)

	store := memory.New(countryDescriptor)
	countries, err := lifecycle.NewManager(
		lifecycle.Adapter[*country]{Descriptor: countryDescriptor, Store: store},
		lifecycle.WithAuditPublisher(pub),
	)
	require.NoError(t, err)
	states, err := lifecycle.NewManager(
		lifecycle.Adapter[*state]{Descriptor: stateDescriptor, Store: memory.New(stateDescriptor)},
		lifecycle.WithAuditPublisher(pub),
	)
	require.NoError(t, err)
	return &fixture{countries: countries, states: states, store: store, sink: sink}
}

func as(actor string, at time.Time) context.Context {
	return testutil.ActorContext(actor, at)
}

// TestCountryLifecycle walks one record through create, update by a second
// user, a rejected stale retry and deletion.
func TestCountryLifecycle(t *testing.T) {
	f := newFixture(t)
	t0 := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(90 * time.Minute)

	created, err := f.countries.Create(as("alice", t0), newCountry("LK", "Sri Lanka"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, lifecycle.StatusActive, created.Status)
	assert.Equal(t, "alice", created.CreatedBy)
	assert.Equal(t, t0, created.CreatedAt)
	assert.Empty(t, created.ModifiedBy)
	assert.Nil(t, created.ModifiedAt)

	found, err := f.countries.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	edit := newCountry("", "Democratic Socialist Republic of Sri Lanka")
	edit.Version = 1
	edit.Status = lifecycle.StatusActive
	updated, err := f.countries.Update(as("bob", t1), 1, edit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "bob", updated.ModifiedBy)
	require.NotNil(t, updated.ModifiedAt)
	assert.Equal(t, t1, *updated.ModifiedAt)
	assert.Equal(t, "LK", updated.Code)
	assert.Equal(t, "alice", updated.CreatedBy)
	assert.Equal(t, t0, updated.CreatedAt)

	before, err := f.countries.FindByID(context.Background(), 1)
	require.NoError(t, err)

	retry := newCountry("", "stale edit")
	retry.Version = 1
	_, err = f.countries.Update(as("bob", t1.Add(time.Minute)), 1, retry)
	require.True(t, dErrors.Is(err, dErrors.CodeStaleWrite))

	after, err := f.countries.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a stale write must leave the stored record untouched")

	require.NoError(t, f.countries.Delete(as("carol", t1), 1))
	_, err = f.countries.FindByID(context.Background(), 1)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	trail := f.sink.ListByRecord("country", 1)
	require.Len(t, trail, 3)
	assert.Equal(t, audit.ActionRecordCreated, trail[0].Action)
	assert.Equal(t, audit.ActionRecordUpdated, trail[1].Action)
	assert.Equal(t, "bob", trail[1].Actor)
	assert.Equal(t, audit.ActionRecordDeleted, trail[2].Action)
	assert.Equal(t, "carol", trail[2].Actor)
}

func TestDuplicateCodeAcrossStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := as("alice", time.Now())

	created, err := f.countries.Create(ctx, newCountry("LK", "Sri Lanka"))
	require.NoError(t, err)

	deactivate := newCountry("", "Sri Lanka")
	deactivate.Version = created.Version
	deactivate.Status = lifecycle.StatusInactive
	_, err = f.countries.Update(ctx, created.ID, deactivate)
	require.NoError(t, err)

	_, err = f.countries.Create(ctx, newCountry("LK", "Lanka again"))
	assert.True(t, dErrors.Is(err, dErrors.CodeDuplicateKey), "inactive records still hold their code")
	assert.Equal(t, 1, f.store.Len())
}

func TestUnauthenticatedMutationsWriteNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.countries.Create(context.Background(), newCountry("LK", "Sri Lanka"))
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthenticated))
	assert.Zero(t, f.store.Len())

	created, err := f.countries.Create(as("alice", time.Now()), newCountry("LK", "Sri Lanka"))
	require.NoError(t, err)

	edit := newCountry("", "anonymous edit")
	edit.Version = created.Version
	_, err = f.countries.Update(context.Background(), created.ID, edit)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthenticated))

	err = f.countries.Delete(context.Background(), created.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthenticated))

	found, err := f.countries.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
	assert.Len(t, f.sink.List(), 1)
}

func TestFindByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := as("alice", time.Now())

	for _, code := range []string{"LK", "IN", "MV"} {
		_, err := f.countries.Create(ctx, newCountry(code, "country "+code))
		require.NoError(t, err)
	}

	inactive, err := f.countries.FindByStatus(ctx, lifecycle.StatusInactive)
	require.NoError(t, err)
	assert.Empty(t, inactive)

	edit := newCountry("", "India")
	edit.Version = 1
	edit.Status = lifecycle.StatusInactive
	_, err = f.countries.Update(ctx, 2, edit)
	require.NoError(t, err)

	active, err := f.countries.FindByStatus(ctx, lifecycle.StatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := f.countries.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindByReference(t *testing.T) {
	f := newFixture(t)
	ctx := as("alice", time.Now())

	for _, s := range []*state{
		{Name: "Western", CountryID: 1},
		{Name: "Central", CountryID: 1},
		{Name: "Kerala", CountryID: 2},
	} {
		_, err := f.states.Create(ctx, s)
		require.NoError(t, err)
	}

	got, err := f.states.FindByReference(ctx, "country_id", 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Western", got[0].Name)
	assert.Equal(t, "Central", got[1].Name)

	none, err := f.states.FindByReference(ctx, "country_id", 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.states.FindByCode(ctx, "WP")
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest), "states carry no code")

	_, err = f.states.Create(ctx, &state{Name: "Orphan"})
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

// TestConcurrentUpdates verifies that of many users holding the same version
// exactly one update lands and the version advances once.
func TestConcurrentUpdates(t *testing.T) {
	f := newFixture(t)
	created, err := f.countries.Create(as("alice", time.Now()), newCountry("LK", "Sri Lanka"))
	require.NoError(t, err)

	const writers = 30
	var wg sync.WaitGroup
	var wins, stale atomic.Int32
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			edit := newCountry("", "edit")
			edit.Version = created.Version
			_, err := f.countries.Update(as("user"+string(rune('a'+i)), time.Now()), created.ID, edit)
			switch {
			case err == nil:
				wins.Add(1)
			case dErrors.Is(err, dErrors.CodeStaleWrite):
				stale.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), stale.Load())

	final, err := f.countries.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), final.Version)
}

// TestConcurrentCreatesSameCode verifies the store closes the window between the
// uniqueness check and the insert.
func TestConcurrentCreatesSameCode(t *testing.T) {
	f := newFixture(t)

	const writers = 30
	var wg sync.WaitGroup
	var wins, dups atomic.Int32
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.countries.Create(as("alice", time.Now()), newCountry("LK", "Sri Lanka"))
			switch {
			case err == nil:
				wins.Add(1)
			case dErrors.Is(err, dErrors.CodeDuplicateKey):
				dups.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), dups.Load())
	assert.Equal(t, 1, f.store.Len())
}
