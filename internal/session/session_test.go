package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/game"
)

func builtin() Provider {
	return game.NewResolver(game.NewLoader(""), "")
}

type persisted struct {
	session string
	game    int
	records []gacha.PullRecord
}

type fakeSink struct {
	calls []persisted
	err   error
}

func (f *fakeSink) Persist(_ context.Context, id string, g int, recs []gacha.PullRecord) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, persisted{session: id, game: g, records: recs})
	return len(recs), nil
}

func TestCreateBuildsBothPools(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(builtin(), WithClock(func() time.Time { return at }))
	s, err := r.Create()
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == "" || !s.CreatedAt.Equal(at) || s.Version != "builtin-1" || s.Game() != 1 {
		t.Fatalf("unexpected session %+v", s)
	}
	for _, kind := range Kinds {
		p, err := s.Pool(kind)
		if err != nil {
			t.Fatal(err)
		}
		if p.Kind() != kind {
			t.Fatalf("pool %s has kind %s", kind, p.Kind())
		}
		if st, _ := s.Pity(kind); st != (gacha.PityState{}) {
			t.Fatalf("fresh %s pool has pity %+v", kind, st)
		}
	}
	if got, err := r.Get(s.ID); err != nil || got != s {
		t.Fatalf("get: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("len %d", r.Len())
	}
}

func TestUnknownSessionAndPool(t *testing.T) {
	r := NewRegistry(builtin())
	if _, err := r.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
	if err := r.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: %v", err)
	}
	s, err := r.Create()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.PullSingle("weapon"); !errors.Is(err, ErrUnknownPool) {
		t.Fatalf("pull: %v", err)
	}
	if err := r.Delete(s.ID); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 0 {
		t.Fatalf("session should be gone")
	}
}

func TestPullsChargeTokens(t *testing.T) {
	s, err := NewRegistry(builtin(), WithSeed(7)).Create()
	if err != nil {
		t.Fatal(err)
	}
	one, err := s.PullSingle(gacha.PoolItem)
	if err != nil {
		t.Fatal(err)
	}
	if one.Cost != 160 || one.Token != "Stellar Jade" || one.Record.Sequence != 1 {
		t.Fatalf("single %+v", one)
	}
	ten, err := s.PullTen(gacha.PoolItem)
	if err != nil {
		t.Fatal(err)
	}
	if ten.Cost != 1600 || len(ten.Records) != 10 {
		t.Fatalf("ten cost %d records %d", ten.Cost, len(ten.Records))
	}
	st, err := s.Stats(gacha.PoolItem)
	if err != nil {
		t.Fatal(err)
	}
	if st.TokensSpent != 1760 || st.TotalPulls != 11 {
		t.Fatalf("stats %+v", st)
	}
	if cs, _ := s.Stats(gacha.PoolCharacter); cs.TokensSpent != 0 || cs.TotalPulls != 0 {
		t.Fatalf("character pool must be untouched: %+v", cs)
	}
}

func TestSeededRegistriesReplay(t *testing.T) {
	pull := func() []gacha.PullRecord {
		s, err := NewRegistry(builtin(), WithSeed(42)).Create()
		if err != nil {
			t.Fatal(err)
		}
		b, err := s.PullTen(gacha.PoolCharacter)
		if err != nil {
			t.Fatal(err)
		}
		return b.Records
	}
	a, b := pull(), pull()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pull %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestNewGameResetsPools(t *testing.T) {
	s, err := NewRegistry(builtin(), WithSeed(3)).Create()
	if err != nil {
		t.Fatal(err)
	}
	for _, kind := range Kinds {
		if _, err := s.PullTen(kind); err != nil {
			t.Fatal(err)
		}
	}
	if g := s.NewGame(); g != 2 || s.Game() != 2 {
		t.Fatalf("game %d", s.Game())
	}
	for _, kind := range Kinds {
		st, _ := s.Stats(kind)
		if st.TotalPulls != 0 || st.TokensSpent != 0 || st.Pity != (gacha.PityState{}) {
			t.Fatalf("%s not reset: %+v", kind, st)
		}
		tbl, _ := s.Table(kind)
		if tbl.Effective != tbl.Base {
			t.Fatalf("%s table after reset %+v", kind, tbl)
		}
	}
}

func TestExportHandsHistoryToSink(t *testing.T) {
	r := NewRegistry(builtin(), WithSeed(11))
	s, err := r.Create()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.PullTen(gacha.PoolItem); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PullSingle(gacha.PoolCharacter); err != nil {
		t.Fatal(err)
	}

	sink := &fakeSink{}
	res, err := r.Export(context.Background(), s.ID, sink)
	if err != nil {
		t.Fatal(err)
	}
	if res.Game != 1 || res.Exported[gacha.PoolItem] != 10 || res.Exported[gacha.PoolCharacter] != 1 {
		t.Fatalf("export %+v", res)
	}
	if len(sink.calls) != 2 || sink.calls[0].session != s.ID || sink.calls[0].game != 1 {
		t.Fatalf("calls %+v", sink.calls)
	}

	if _, err := r.Export(context.Background(), "missing", sink); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing session: %v", err)
	}
	boom := errors.New("disk full")
	if _, err := r.Export(context.Background(), s.ID, &fakeSink{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("sink error not wrapped: %v", err)
	}
}

func TestExportNeverMixesGames(t *testing.T) {
	const games = 40
	r := NewRegistry(builtin(), WithSeed(17))
	s, err := r.Create()
	if err != nil {
		t.Fatal(err)
	}

	// game g pulls games-g times, so a history filed under a later game
	// would be too long for it
	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for g := 1; g < games; g++ {
			for i := 0; i < games-g; i++ {
				if _, err := s.PullSingle(gacha.PoolItem); err != nil {
					t.Error(err)
					return
				}
			}
			s.NewGame()
		}
	}()

	sink := &fakeSink{}
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		if _, err := r.Export(context.Background(), s.ID, sink); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	for _, c := range sink.calls {
		if n := len(c.records); c.game < games && n > games-c.game {
			t.Fatalf("game %d exported %d records", c.game, n)
		}
		for i, rec := range c.records {
			if rec.Sequence != i+1 {
				t.Fatalf("game %d: record %d has sequence %d", c.game, i, rec.Sequence)
			}
		}
	}
}
