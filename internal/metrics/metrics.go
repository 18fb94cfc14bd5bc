// Package metrics defines the Prometheus instruments shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scheduler Metrics
var (
	// SchedulerArmedSessions tracks sessions with pending timers
	SchedulerArmedSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_armed_sessions",
			Help: "Number of sessions with armed timers",
		},
	)

	// SchedulerTransitionsTotal tracks timer fires by transition kind
	SchedulerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_transitions_total",
			Help: "Total fired transitions by kind",
		},
		[]string{"kind"},
	)

	// SchedulerPanicsTotal tracks recovered panics in transition handlers
	SchedulerPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_panics_recovered_total",
			Help: "Total panics recovered in transition handlers",
		},
	)
)

// Answer & Reward Metrics
var (
	// AnswersTotal tracks answer submissions by outcome (accepted/rejected)
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answers_total",
			Help: "Total answer submissions by outcome",
		},
		[]string{"outcome"},
	)

	// RewardsTotal tracks reward dispatches by status (success/failure)
	RewardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_total",
			Help: "Total reward dispatches by status",
		},
		[]string{"status"},
	)
)

// Hub Metrics
var (
	// HubActiveRooms tracks rooms with at least one subscriber
	HubActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_active_rooms",
			Help: "Number of rooms with connected clients",
		},
	)

	// HubConnectedClients tracks connected WebSocket clients
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients_total",
			Help: "Total number of connected WebSocket clients across all rooms",
		},
	)

	// HubSlowClientsEvicted tracks clients dropped for full send buffers
	HubSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "Total clients evicted because their send buffer was full",
		},
	)

	// HubPanicsTotal tracks recovered panics in the hub goroutine
	HubPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_panics_recovered_total",
			Help: "Total panics recovered in the hub goroutine",
		},
	)

	// WebSocketPingFailures tracks failed pings (client likely gone)
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total WebSocket ping failures",
		},
	)

	// WebSocketMessagesDropped tracks inbound frames dropped by rate limiting
	WebSocketMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total inbound WebSocket messages dropped by the rate limiter",
		},
	)
)
