// Package httpapi serves sessions and simulations as a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/session"
	"github.com/xtding233/gacha-sim/internal/sim"
)

type Deps struct {
	Sessions *session.Registry
	Rules    session.Provider // current rules, used by /simulate
	Sink     session.Sink     // nil disables export
	Logger   zerolog.Logger
}

type Handler struct {
	sessions *session.Registry
	rules    session.Provider
	sink     session.Sink
	log      zerolog.Logger
}

func NewHandler(deps Deps) *Handler {
	return &Handler{sessions: deps.Sessions, rules: deps.Rules, sink: deps.Sink, log: deps.Logger}
}

// Router mounts every route on a chi router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/simulate", h.Simulate)
	r.Route("/sessions", func(rr chi.Router) {
		rr.Post("/", h.CreateSession)
		rr.Route("/{id}", func(sr chi.Router) {
			sr.Delete("/", h.DeleteSession)
			sr.Post("/new-game", h.NewGame)
			sr.Post("/export", h.Export)
			sr.Route("/pools/{kind}", func(pr chi.Router) {
				pr.Post("/pull", h.Pull)
				pr.Post("/pull10", h.PullTen)
				pr.Get("/pity", h.Pity)
				pr.Get("/table", h.Table)
				pr.Get("/history", h.History)
				pr.Get("/stats", h.Stats)
			})
		})
	})
	return r
}

type sessionResp struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`
	Game      int       `json:"game"`
}

type errorResp struct {
	Err string `json:"err"`
}

type batchResp struct {
	session.BatchResult
	Err string `json:"err,omitempty"`
}

type exportResp struct {
	ID       string                 `json:"id"`
	Game     int                    `json:"game"`
	Exported map[gacha.PoolKind]int `json:"exported"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResp{Err: err.Error()})
}

func parseInt(r *http.Request, key string) (int, bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: invalid %s", errBadRequest, key)
	}
	return v, true, nil
}

func (h *Handler) session(r *http.Request) (*session.Session, error) {
	return h.sessions.Get(chi.URLParam(r, "id"))
}

// target resolves the session and pool kind named in the path.
func (h *Handler) target(r *http.Request) (*session.Session, gacha.PoolKind, error) {
	s, err := h.session(r)
	if err != nil {
		return nil, "", err
	}
	kind, err := gacha.ParsePoolKind(chi.URLParam(r, "kind"))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", session.ErrUnknownPool, err)
	}
	return s, kind, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResp{ID: s.ID, CreatedAt: s.CreatedAt, Version: s.Version, Game: s.Game()})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) NewGame(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g := s.NewGame()
	writeJSON(w, http.StatusOK, sessionResp{ID: s.ID, CreatedAt: s.CreatedAt, Version: s.Version, Game: g})
}

func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	s, kind, err := h.target(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.PullSingle(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PullTen answers with the committed records even when a pull failed.
func (h *Handler) PullTen(w http.ResponseWriter, r *http.Request) {
	s, kind, err := h.target(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.PullTen(kind)
	if err != nil {
		writeJSON(w, statusFor(err), batchResp{BatchResult: res, Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, batchResp{BatchResult: res})
}

func (h *Handler) Pity(w http.ResponseWriter, r *http.Request) {
	s, kind, err := h.target(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.Pity(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	s, kind, err := h.target(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := s.Table(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	s, kind, err := h.target(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recs, err := s.History(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []gacha.PullRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, kind, err := h.target(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.Stats(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp{Err: "ledger sink is not configured"})
		return
	}
	s, err := h.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.sessions.Export(r.Context(), s.ID, h.sink)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResp{ID: s.ID, Game: res.Game, Exported: res.Exported})
}

// Simulate runs a Monte Carlo study against the current rules of a pool.
// Query: pool, goal, trials, seed, cushion, draws (fixed_budget only).
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := sim.Request{Pool: gacha.PoolKind(q.Get("pool")), Goal: gacha.TrialGoal(q.Get("goal"))}
	for _, p := range []struct {
		key string
		dst *int
	}{{"trials", &req.Trials}, {"cushion", &req.Cushion}, {"draws", &req.Draws}} {
		v, ok, err := parseInt(r, p.key)
		if err != nil {
			writeError(w, err)
			return
		}
		if ok {
			if v == 0 && p.key == "trials" {
				writeError(w, fmt.Errorf("%w: trials must be > 0", errBadRequest))
				return
			}
			*p.dst = v
		}
	}
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid seed", errBadRequest))
			return
		}
		req.Seed = seed
	}

	res, err := sim.Run(h.rules, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
