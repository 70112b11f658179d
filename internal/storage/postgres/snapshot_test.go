package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/monbattle/internal/game/battle"
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
	"github.com/cory-johannsen/monbattle/internal/storage/postgres"
	"github.com/cory-johannsen/monbattle/internal/testutil"
)

func setupSnapshotRepo(t *testing.T) *postgres.SnapshotRepository {
	t.Helper()
	return postgres.NewSnapshotRepository(testutil.NewPool(t))
}

func makeSnapshot(wave, turn int) battle.Snapshot {
	c := battler.New(battler.Params{
		Species: "emberkit", Name: "EMBERKIT", Types: []string{"fire"}, Side: battler.SidePlayer,
		Level: 12, Growth: exp.MediumFast,
		Base:  battler.Stats{39, 52, 43, 60, 50, 65},
		Moves: []battler.MoveSlot{{Move: "ember", MaxPP: 25, PPUsed: 3}},
	})
	h := reward.NewHoldings()
	h.Modifiers[reward.ExpShare] = 2
	return battle.Snapshot{
		SessionID:   uuid.NewString(),
		Wave:        wave,
		Turn:        turn,
		Party:       []battler.Snapshot{c.Snapshot()},
		Active:      0,
		EnemyActive: -1,
		Holdings:    *h,
	}
}

func TestSnapshotRepository_SaveLoad(t *testing.T) {
	repo := setupSnapshotRepo(t)
	ctx := context.Background()

	s := makeSnapshot(4, 2)
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Load(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID, got.SessionID)
	assert.Equal(t, 4, got.Wave)
	assert.Equal(t, 2, got.Turn)
	require.Len(t, got.Party, 1)
	assert.Equal(t, s.Party[0], got.Party[0])
	assert.Equal(t, 2, got.Holdings.Modifiers[reward.ExpShare])
	assert.Equal(t, battle.OutcomeRunning, got.Outcome)
}

func TestSnapshotRepository_SaveReplaces(t *testing.T) {
	repo := setupSnapshotRepo(t)
	ctx := context.Background()

	s := makeSnapshot(1, 0)
	require.NoError(t, repo.Save(ctx, s))
	s.Wave = 9
	s.Outcome = battle.OutcomeGameOver
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Load(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Wave)
	assert.Equal(t, battle.OutcomeGameOver, got.Outcome)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "game_over", list[0].Outcome)
}

func TestSnapshotRepository_LoadMissing(t *testing.T) {
	repo := setupSnapshotRepo(t)
	_, err := repo.Load(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, postgres.ErrSnapshotNotFound)
}

func TestSnapshotRepository_InvalidSessionID(t *testing.T) {
	repo := setupSnapshotRepo(t)
	ctx := context.Background()
	s := makeSnapshot(1, 0)
	s.SessionID = "not-a-uuid"
	assert.ErrorIs(t, repo.Save(ctx, s), postgres.ErrInvalidSessionID)
	_, err := repo.Load(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, postgres.ErrInvalidSessionID)
}

func TestSnapshotRepository_ListNewestFirstAndDelete(t *testing.T) {
	repo := setupSnapshotRepo(t)
	ctx := context.Background()

	first := makeSnapshot(1, 0)
	second := makeSnapshot(2, 0)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.SessionID, list[0].SessionID)
	assert.False(t, list[0].UpdatedAt.Before(list[1].UpdatedAt))

	list, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, first.SessionID))
	assert.ErrorIs(t, repo.Delete(ctx, first.SessionID), postgres.ErrSnapshotNotFound)
	_, err = repo.Load(ctx, first.SessionID)
	assert.ErrorIs(t, err, postgres.ErrSnapshotNotFound)
}

func TestProperty_SnapshotRoundTripKeepsProgress(t *testing.T) {
	repo := setupSnapshotRepo(t)
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		wave := rapid.IntRange(0, 500).Draw(rt, "wave")
		turn := rapid.IntRange(0, 50).Draw(rt, "turn")
		s := makeSnapshot(wave, turn)
		if err := repo.Save(ctx, s); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := repo.Load(ctx, s.SessionID)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		if got.Wave != wave || got.Turn != turn {
			rt.Fatalf("got wave %d turn %d, want %d %d", got.Wave, got.Turn, wave, turn)
		}
	})
}

func TestPool_RequireSchemaFollowsMigrations(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))
	assert.ErrorIs(t, pc.Pool.RequireSchema(ctx), postgres.ErrSchemaMissing)

	pc.ApplyMigrations(t)
	require.NoError(t, pc.Pool.RequireSchema(ctx))

	repo := pc.Pool.Snapshots()
	s := makeSnapshot(3, 1)
	require.NoError(t, repo.Save(ctx, s))
	got, err := repo.Load(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Wave)
}
