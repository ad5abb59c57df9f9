// Package api serves the settlement read model over HTTP. It never mutates state.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radicleart/bigmarket-dao/genesis"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/market"
	"github.com/radicleart/bigmarket-dao/storage"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Reader is the read model the server exposes.
type Reader interface {
	Market(ctx context.Context, marketID uint64) (*storage.Market, error)
	StakeBalance(ctx context.Context, marketID uint64, participant codec.Address) (storage.StakeBalance, error)
	MarketCount(ctx context.Context) (uint64, error)
	Params(ctx context.Context) (*governance.Params, error)
	Custody(ctx context.Context, token ids.ID) (uint64, error)
}

type Server struct {
	reader Reader
	log    logging.Logger
}

func NewServer(reader Reader, log logging.Logger) *Server {
	return &Server{reader: reader, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		json200(w, map[string]string{"status": "ok"})
	})

	r.Get("/markets", s.listMarkets)
	r.Get("/markets/{id}", s.getMarket)
	r.Get("/markets/{id}/stakes/{address}", s.getStake)
	r.Get("/tokens/{token}/custody", s.getCustody)
	r.Get("/governance", s.getGovernance)
	return r
}

func (s *Server) listMarkets(w http.ResponseWriter, r *http.Request) {
	offset, err := queryUint(r, "offset", 0)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := queryUint(r, "limit", defaultLimit)
	if err != nil || limit == 0 {
		jsonErr(w, http.StatusBadRequest, "invalid limit")
		return
	}
	limit = min(limit, maxLimit)

	count, err := s.reader.MarketCount(r.Context())
	if err != nil {
		s.internalErr(w, err)
		return
	}
	views := make([]MarketView, 0, min(limit, count))
	for id := offset; id < count && uint64(len(views)) < limit; id++ {
		m, err := s.reader.Market(r.Context(), id)
		if err != nil {
			s.internalErr(w, err)
			return
		}
		views = append(views, NewMarketView(m))
	}
	json200(w, MarketList{Count: count, Markets: views})
}

func (s *Server) getMarket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid market id")
		return
	}
	m, err := s.reader.Market(r.Context(), id)
	if errors.Is(err, market.ErrNotFound) {
		jsonErr(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.internalErr(w, err)
		return
	}
	json200(w, NewMarketView(m))
}

func (s *Server) getStake(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid market id")
		return
	}
	participant, err := genesis.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	balance, err := s.reader.StakeBalance(r.Context(), id, participant)
	if err != nil {
		s.internalErr(w, err)
		return
	}
	json200(w, StakeView{
		MarketID:    id,
		Participant: chi.URLParam(r, "address"),
		YesAmount:   balance.YesAmount,
		NoAmount:    balance.NoAmount,
	})
}

func (s *Server) getCustody(w http.ResponseWriter, r *http.Request) {
	token, err := ids.FromString(chi.URLParam(r, "token"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid token id")
		return
	}
	held, err := s.reader.Custody(r.Context(), token)
	if err != nil {
		s.internalErr(w, err)
		return
	}
	json200(w, map[string]any{"token": token, "custody": held})
}

func (s *Server) getGovernance(w http.ResponseWriter, r *http.Request) {
	params, err := s.reader.Params(r.Context())
	if err != nil {
		s.internalErr(w, err)
		return
	}
	json200(w, params)
}

func (s *Server) internalErr(w http.ResponseWriter, err error) {
	s.log.Warn("read model request failed", zap.Error(err))
	jsonErr(w, http.StatusInternalServerError, "internal error")
}

func queryUint(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func json200(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
