// Package metrics counts automation and button dispatches with Prometheus.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
)

// Status label values
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Outcome state label values
const (
	StateProcessed = "processed"
	StateSkipped   = "skipped"
)

// Metrics holds the counters the dispatchers update. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Automations counts handler runs by automation type and status
	Automations *prometheus.CounterVec

	// Outcomes counts dispatcher passes over outcomes by state
	Outcomes *prometheus.CounterVec

	// Executed counts outcomes whose automations completed, by action type
	Executed *prometheus.CounterVec

	// ButtonClicks counts button handler runs by button type and status
	ButtonClicks *prometheus.CounterVec
}

// New registers the counters under namespace on a fresh registry
func New(namespace string) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Automations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automations_total",
			Help:      "Automation handler runs by type and status.",
		}, []string{"type", "status"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_outcomes_total",
			Help:      "Outcomes seen by the automation dispatcher, processed or skipped as already done.",
		}, []string{"state"}),
		Executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_executed_total",
			Help:      "Outcomes whose automations all completed, by action type.",
		}, []string{"action"}),
		ButtonClicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "button_clicks_total",
			Help:      "Chat button handler runs by type and status.",
		}, []string{"type", "status"}),
	}

	for _, c := range []prometheus.Collector{m.Automations, m.Outcomes, m.Executed, m.ButtonClicks} {
		if err := m.registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register metric")
		}
	}
	return m, nil
}

// AutomationRan records one automation handler run
func (m *Metrics) AutomationRan(automationType string, err error) {
	if m == nil {
		return
	}
	m.Automations.WithLabelValues(automationType, status(err)).Inc()
}

// OutcomeSeen records whether the dispatcher processed or skipped an outcome
func (m *Metrics) OutcomeSeen(processed bool) {
	if m == nil {
		return
	}
	state := StateSkipped
	if processed {
		state = StateProcessed
	}
	m.Outcomes.WithLabelValues(state).Inc()
}

// OutcomeExecuted records an outcome whose automations all completed
func (m *Metrics) OutcomeExecuted(actionType string) {
	if m == nil {
		return
	}
	m.Executed.WithLabelValues(actionType).Inc()
}

// ButtonClicked records one button handler run
func (m *Metrics) ButtonClicked(buttonType string, err error) {
	if m == nil {
		return
	}
	m.ButtonClicks.WithLabelValues(buttonType, status(err)).Inc()
}

// WriteText writes every counter in the Prometheus text format
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusOK
}
