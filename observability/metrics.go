package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type rewardsMetrics struct {
	claims     *prometheus.CounterVec
	shortfalls *prometheus.CounterVec
}

type auctionMetrics struct {
	started    prometheus.Counter
	completed  prometheus.Counter
	terminated prometheus.Counter
	lotsSold   prometheus.Counter
}

var (
	rewardsMetricsOnce sync.Once
	rewardsRegistry    *rewardsMetrics

	auctionMetricsOnce sync.Once
	auctionRegistry    *auctionMetrics
)

// Rewards returns the lazily-initialised metrics registry tracking reward
// distribution activity.
func Rewards() *rewardsMetrics {
	rewardsMetricsOnce.Do(func() {
		rewardsRegistry = &rewardsMetrics{
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "safety",
				Subsystem: "rewards",
				Name:      "claims_total",
				Help:      "Count of reward claim payouts segmented by reward token.",
			}, []string{"token"}),
			shortfalls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "safety",
				Subsystem: "rewards",
				Name:      "shortfalls_total",
				Help:      "Count of claims that exceeded the reserve balance, segmented by reward token.",
			}, []string{"token"}),
		}
		prometheus.MustRegister(rewardsRegistry.claims, rewardsRegistry.shortfalls)
	})
	return rewardsRegistry
}

// RecordClaim increments the claim counter for the supplied token address.
func (m *rewardsMetrics) RecordClaim(token string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(normalizeLabel(token)).Inc()
}

// RecordShortfall increments the shortfall counter for the supplied token
// address.
func (m *rewardsMetrics) RecordShortfall(token string) {
	if m == nil {
		return
	}
	m.shortfalls.WithLabelValues(normalizeLabel(token)).Inc()
}

// Auctions returns the lazily-initialised metrics registry tracking the
// slashing auction lifecycle.
func Auctions() *auctionMetrics {
	auctionMetricsOnce.Do(func() {
		auctionRegistry = &auctionMetrics{
			started: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "safety",
				Subsystem: "auction",
				Name:      "started_total",
				Help:      "Count of slashing auctions started.",
			}),
			completed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "safety",
				Subsystem: "auction",
				Name:      "completed_total",
				Help:      "Count of auctions completed by sellout or expiry.",
			}),
			terminated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "safety",
				Subsystem: "auction",
				Name:      "terminated_total",
				Help:      "Count of auctions terminated early by governance.",
			}),
			lotsSold: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "safety",
				Subsystem: "auction",
				Name:      "lots_sold_total",
				Help:      "Count of lots sold across all auctions.",
			}),
		}
		prometheus.MustRegister(
			auctionRegistry.started,
			auctionRegistry.completed,
			auctionRegistry.terminated,
			auctionRegistry.lotsSold,
		)
	})
	return auctionRegistry
}

// RecordStarted increments the auction started counter.
func (m *auctionMetrics) RecordStarted() {
	if m == nil {
		return
	}
	m.started.Inc()
}

// RecordCompleted increments the auction completed counter.
func (m *auctionMetrics) RecordCompleted() {
	if m == nil {
		return
	}
	m.completed.Inc()
}

// RecordTerminated increments the auction terminated counter.
func (m *auctionMetrics) RecordTerminated() {
	if m == nil {
		return
	}
	m.terminated.Inc()
}

// RecordLotsSold adds the number of lots sold in a purchase.
func (m *auctionMetrics) RecordLotsSold(n uint64) {
	if m == nil {
		return
	}
	m.lotsSold.Add(float64(n))
}

func normalizeLabel(v string) string {
	normalized := strings.TrimSpace(strings.ToLower(v))
	if normalized == "" {
		normalized = "unknown"
	}
	return normalized
}
