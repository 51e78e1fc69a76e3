package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sugarWatch/internal/model"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Metrics holds the prometheus collectors shared by the adapters, the
// snapshot collector and the bots. A nil *Metrics records nothing.
type Metrics struct {
	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	ticks       *prometheus.CounterVec

	tvl         *prometheus.GaugeVec
	fees        *prometheus.GaugeVec
	volume      *prometheus.GaugeVec
	epochFees   *prometheus.GaugeVec
	epochBribes *prometheus.GaugeVec
	pools       *prometheus.GaugeVec
	tokenPrice  *prometheus.GaugeVec
}

// NewMetrics creates and registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	m := &Metrics{
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "Contract calls issued, by method and outcome.",
		}, []string{"method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_call_duration_seconds",
			Help:      "Latency of contract calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_ticks_total",
			Help:      "Bot refresh cycles, by bot and outcome.",
		}, []string{"bot", "status"}),
		tvl:         gauge("tvl_stable", "Total value locked in the stable token.", "protocol"),
		fees:        gauge("fees_stable", "Pool fees in the stable token.", "protocol"),
		volume:      gauge("volume_stable", "Volume implied by pool fees.", "protocol"),
		epochFees:   gauge("epoch_fees_stable", "Latest epoch fee rewards.", "protocol"),
		epochBribes: gauge("epoch_bribes_stable", "Latest epoch incentives.", "protocol"),
		pools:       gauge("pools", "Pools returned by the sugar contract.", "protocol"),
		tokenPrice:  gauge("token_price_stable", "Watched token price.", "protocol", "symbol"),
	}

	if reg != nil {
		reg.MustRegister(
			m.rpcCalls, m.rpcDuration, m.ticks,
			m.tvl, m.fees, m.volume, m.epochFees, m.epochBribes, m.pools, m.tokenPrice,
		)
	}
	return m
}

// ObserveRPC records one contract call that started at start.
func (m *Metrics) ObserveRPC(method string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	m.rpcCalls.WithLabelValues(method, status(err)).Inc()
}

// ObserveTick records one bot refresh cycle.
func (m *Metrics) ObserveTick(bot string, err error) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(bot, status(err)).Inc()
}

// RecordSnapshot publishes the protocol figures of snap.
func (m *Metrics) RecordSnapshot(snap model.Snapshot) {
	if m == nil {
		return
	}
	m.tvl.WithLabelValues(snap.Protocol).Set(snap.TVL)
	m.fees.WithLabelValues(snap.Protocol).Set(snap.Fees)
	m.volume.WithLabelValues(snap.Protocol).Set(snap.Volume)
	m.epochFees.WithLabelValues(snap.Protocol).Set(snap.EpochFees)
	m.epochBribes.WithLabelValues(snap.Protocol).Set(snap.EpochBribes)
	m.pools.WithLabelValues(snap.Protocol).Set(float64(snap.PoolCount))
	if snap.TokenSymbol != "" {
		m.tokenPrice.WithLabelValues(snap.Protocol, snap.TokenSymbol).Set(snap.TokenPrice)
	}
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}
