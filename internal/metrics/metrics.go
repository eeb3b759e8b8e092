// Package metrics — счётчики Prometheus бота.
// Регистрируются в глобальном реестре и отдаются на /metrics health-сервера.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	updatesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderator_updates_handled_total",
			Help: "Total number of updates received, by kind",
		},
		[]string{"kind"},
	)

	updatesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderator_updates_dropped_total",
			Help: "Total number of updates dropped before dispatch",
		},
		[]string{"reason"},
	)

	commandsUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderator_commands_used_total",
			Help: "Total number of commands used",
		},
		[]string{"command"},
	)

	karmaGrants = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderator_karma_grants_total",
			Help: "Karma grant attempts by result",
		},
		[]string{"result"},
	)

	warningsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "moderator_warnings_issued_total",
			Help: "Total number of warnings issued",
		},
	)

	restrictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderator_restrictions_total",
			Help: "Mute/unmute calls by action and status",
		},
		[]string{"action", "status"},
	)

	greetingsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "moderator_greetings_sent_total",
			Help: "Total number of greetings sent",
		},
	)

	tableRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moderator_table_rows",
			Help: "Number of rows per table, refreshed by the scheduler",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(updatesHandled)
	prometheus.MustRegister(updatesDropped)
	prometheus.MustRegister(commandsUsed)
	prometheus.MustRegister(karmaGrants)
	prometheus.MustRegister(warningsIssued)
	prometheus.MustRegister(restrictions)
	prometheus.MustRegister(greetingsSent)
	prometheus.MustRegister(tableRows)
}

func RecordUpdate(kind string) {
	updatesHandled.WithLabelValues(kind).Inc()
}

func RecordDropped(reason string) {
	updatesDropped.WithLabelValues(reason).Inc()
}

func RecordCommand(command string) {
	commandsUsed.WithLabelValues(command).Inc()
}

// RecordKarmaGrant: result = applied | cooldown | error.
func RecordKarmaGrant(result string) {
	karmaGrants.WithLabelValues(result).Inc()
}

func RecordWarning() {
	warningsIssued.Inc()
}

// RecordRestriction: action = mute | unmute, status = ok | error.
func RecordRestriction(action, status string) {
	restrictions.WithLabelValues(action, status).Inc()
}

func RecordGreeting() {
	greetingsSent.Inc()
}

func SetTableRows(table string, n int64) {
	tableRows.WithLabelValues(table).Set(float64(n))
}
