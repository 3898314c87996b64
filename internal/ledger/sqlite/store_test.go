package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func sampleRecords(pool gacha.PoolKind, rarities ...gacha.Rarity) []gacha.PullRecord {
	out := make([]gacha.PullRecord, len(rarities))
	for i, r := range rarities {
		out[i] = gacha.PullRecord{
			Pool:         pool,
			Sequence:     i + 1,
			Rarity:       r,
			FiveStarPity: i + 1,
			FourStarPity: i + 1,
			FiveStarRate: 0.006,
			HardPity:     r == gacha.FiveStar,
			Reward:       gacha.Reward{ID: "r" + r.String(), Name: "reward", Kind: "material", Rarity: r},
		}
	}
	return out
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPersistIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	recs := sampleRecords(gacha.PoolItem, gacha.ThreeStar, gacha.FourStar, gacha.FiveStar)

	n, err := store.Persist(ctx, "s1", 1, recs)
	if err != nil || n != 3 {
		t.Fatalf("first persist: n=%d err=%v", n, err)
	}
	recs = append(recs, sampleRecords(gacha.PoolItem, gacha.ThreeStar, gacha.ThreeStar, gacha.ThreeStar, gacha.FourStar)[3])
	n, err = store.Persist(ctx, "s1", 1, recs)
	if err != nil || n != 1 {
		t.Fatalf("second persist should add only the new record: n=%d err=%v", n, err)
	}

	got, err := store.List(ctx, "s1", 1, gacha.PoolItem)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	for i, r := range got {
		if r != recs[i] {
			t.Fatalf("record %d round trip: got %+v want %+v", i, r, recs[i])
		}
	}
}

func TestPersistSeparatesGamesAndPools(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if _, err := store.Persist(ctx, "s1", 1, sampleRecords(gacha.PoolItem, gacha.ThreeStar, gacha.FiveStar)); err != nil {
		t.Fatal(err)
	}
	// a new game restarts sequence numbers
	if n, err := store.Persist(ctx, "s1", 2, sampleRecords(gacha.PoolItem, gacha.FourStar)); err != nil || n != 1 {
		t.Fatalf("second game: n=%d err=%v", n, err)
	}
	if _, err := store.Persist(ctx, "s1", 1, sampleRecords(gacha.PoolCharacter, gacha.FourStar)); err != nil {
		t.Fatal(err)
	}

	if got, _ := store.List(ctx, "s1", 2, gacha.PoolItem); len(got) != 1 || got[0].Rarity != gacha.FourStar {
		t.Fatalf("game 2 records %+v", got)
	}
	tally, err := store.Tally(ctx, "s1", gacha.PoolItem)
	if err != nil {
		t.Fatal(err)
	}
	if tally[gacha.ThreeStar] != 1 || tally[gacha.FourStar] != 1 || tally[gacha.FiveStar] != 1 {
		t.Fatalf("tally %v", tally)
	}
}

func TestPersistValidatesInput(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if _, err := store.Persist(ctx, "", 1, sampleRecords(gacha.PoolItem, gacha.ThreeStar)); err == nil {
		t.Fatal("expected error for missing session id")
	}
	if n, err := store.Persist(ctx, "s1", 1, nil); err != nil || n != 0 {
		t.Fatalf("empty persist: n=%d err=%v", n, err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.Persist(cancelled, "s1", 1, sampleRecords(gacha.PoolItem, gacha.ThreeStar)); err == nil {
		t.Fatal("expected context error")
	}
}
