// Package api serves the aggregated pool, price and epoch data over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sugarWatch/internal/address"
	"sugarWatch/internal/aggregate"
	"sugarWatch/internal/model"
	"sugarWatch/internal/sugar"
)

// TokenService resolves listed tokens.
type TokenService interface {
	ByAddress(ctx context.Context, addr string) (*model.Token, error)
}

// PriceService prices tokens in the stable token.
type PriceService interface {
	Prices(ctx context.Context, tokens []model.Token) ([]model.Price, error)
}

// PoolService lists, looks up and searches pools.
type PoolService interface {
	Pools(ctx context.Context) ([]model.LiquidityPool, error)
	ByAddress(ctx context.Context, addr string) (*model.LiquidityPool, error)
	Search(ctx context.Context, query string, limit int) ([]model.LiquidityPool, error)
}

// EpochService looks up the latest epoch of a pool.
type EpochService interface {
	ForPool(ctx context.Context, addr string) (*model.LiquidityPoolEpoch, error)
}

// StatsService collects protocol-wide figures.
type StatsService interface {
	Collect(ctx context.Context) (model.Snapshot, error)
}

// SnapshotReader reads back recorded snapshots.
type SnapshotReader interface {
	Latest(ctx context.Context, protocol string) (model.Snapshot, bool, error)
	History(ctx context.Context, protocol string, since time.Time) ([]model.Snapshot, error)
}

// defaultHistoryWindow is how far back /snapshots reaches without since.
const defaultHistoryWindow = 24 * time.Hour

// Deps are the services behind the routes.
type Deps struct {
	Tokens   TokenService
	Prices   PriceService
	Pools    PoolService
	Epochs   EpochService
	Stats    StatsService
	Gatherer prometheus.Gatherer

	// Snapshots, when set, serves the recorded history of Protocol.
	Snapshots SnapshotReader
	Protocol  string
}

// Server is the HTTP query API.
type Server struct {
	server *http.Server
	deps   Deps
	logger *zap.Logger
}

func NewServer(addr string, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{deps: deps, logger: logger}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.getHealth)
	r.Get("/tokens/{address}", s.getToken)
	r.Get("/prices", s.getPrices)
	r.Route("/pools", func(r chi.Router) {
		r.Get("/", s.getPools)
		r.Get("/search", s.searchPools)
		r.Get("/{address}", s.getPool)
		r.Get("/{address}/epoch", s.getPoolEpoch)
	})
	r.Get("/stats", s.getStats)
	if s.deps.Snapshots != nil {
		r.Get("/snapshots", s.getSnapshots)
		r.Get("/snapshots/latest", s.getLatestSnapshot)
	}
	if s.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// poolView adds the derived metrics to a pool.
type poolView struct {
	model.LiquidityPool
	TVL           float64 `json:"tvl"`
	Volume        float64 `json:"volume"`
	TotalFees     float64 `json:"total_fees"`
	FeePercentage float64 `json:"fee_percentage"`
	APR           float64 `json:"apr"`
}

func newPoolView(p model.LiquidityPool) poolView {
	tvl := p.TVL()
	return poolView{
		LiquidityPool: p,
		TVL:           tvl,
		Volume:        p.Volume(),
		TotalFees:     p.TotalFees(),
		FeePercentage: p.FeePercentage(),
		APR:           p.APR(tvl),
	}
}

func poolViews(pools []model.LiquidityPool) []poolView {
	out := make([]poolView, len(pools))
	for i, p := range pools {
		out[i] = newPoolView(p)
	}
	return out
}

type epochView struct {
	model.LiquidityPoolEpoch
	TotalFees    float64 `json:"total_fees"`
	TotalBribes  float64 `json:"total_bribes"`
	TotalRewards float64 `json:"total_rewards"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getToken(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	token, err := s.deps.Tokens.ByAddress(r.Context(), addr)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if token == nil {
		s.writeError(w, http.StatusNotFound, "token not found")
		return
	}
	s.writeJSON(w, http.StatusOK, token)
}

func (s *Server) getPrices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tokens")
	if strings.TrimSpace(raw) == "" {
		s.writeError(w, http.StatusBadRequest, "tokens query parameter is required")
		return
	}

	var tokens []model.Token
	for _, addr := range strings.Split(raw, ",") {
		if strings.TrimSpace(addr) == "" {
			continue
		}
		token, err := s.deps.Tokens.ByAddress(r.Context(), addr)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		if token == nil {
			s.writeError(w, http.StatusNotFound, "token not found: "+strings.TrimSpace(addr))
			return
		}
		tokens = append(tokens, *token)
	}

	prices, err := s.deps.Prices.Prices(r.Context(), tokens)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	type priceView struct {
		model.Price
		Pretty float64 `json:"pretty_price"`
	}
	out := make([]priceView, len(prices))
	for i, p := range prices {
		out[i] = priceView{Price: p, Pretty: p.Pretty()}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.deps.Pools.Pools(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if limit := parseLimit(r, 0); limit > 0 && len(pools) > limit {
		pools = pools[:limit]
	}
	s.writeJSON(w, http.StatusOK, poolViews(pools))
}

func (s *Server) searchPools(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	pools, err := s.deps.Pools.Search(r.Context(), query, parseLimit(r, aggregate.DefaultSearchLimit))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, poolViews(pools))
}

func (s *Server) getPool(w http.ResponseWriter, r *http.Request) {
	pool, err := s.deps.Pools.ByAddress(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if pool == nil {
		s.writeError(w, http.StatusNotFound, "pool not found")
		return
	}
	s.writeJSON(w, http.StatusOK, newPoolView(*pool))
}

func (s *Server) getPoolEpoch(w http.ResponseWriter, r *http.Request) {
	epoch, err := s.deps.Epochs.ForPool(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if epoch == nil {
		s.writeError(w, http.StatusNotFound, "epoch not found")
		return
	}
	s.writeJSON(w, http.StatusOK, epochView{
		LiquidityPoolEpoch: *epoch,
		TotalFees:          epoch.TotalFees(),
		TotalBribes:        epoch.TotalBribes(),
		TotalRewards:       epoch.TotalRewards(),
	})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Stats.Collect(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok, err := s.deps.Snapshots.Latest(r.Context(), s.deps.Protocol)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no snapshot recorded")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getSnapshots(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-defaultHistoryWindow)
	if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
		parsed, err := parseSince(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "since must be unix seconds or RFC3339")
			return
		}
		since = parsed
	}

	snaps, err := s.deps.Snapshots.History(r.Context(), s.deps.Protocol, since)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	s.writeJSON(w, http.StatusOK, snaps)
}

// parseSince accepts unix seconds or an RFC3339 timestamp.
func parseSince(input string) (time.Time, error) {
	if secs, err := strconv.ParseInt(input, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, input)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

// writeFailure maps service errors onto status codes.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var (
		rpcErr    *sugar.RPCError
		decodeErr *sugar.DecodeError
	)
	switch {
	case errors.Is(err, address.ErrInvalidAddress):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &rpcErr), errors.As(err, &decodeErr):
		s.logger.Warn("upstream failure", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "upstream rpc failure")
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
