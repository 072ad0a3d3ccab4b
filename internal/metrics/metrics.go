// Package metrics holds the prometheus collectors of the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/keshon/trollbot/internal/command"
)

const namespace = "trollbot"

// Metrics implements command.Recorder and counts gateway and karma activity.
type Metrics struct {
	Messages       prometheus.Counter
	Runs           *prometheus.CounterVec
	Denials        *prometheus.CounterVec
	UnknownNames   prometheus.Counter
	CommandLatency *prometheus.HistogramVec
	Awarded        prometheus.Counter
}

var _ command.Recorder = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "messages",
			Help:      "Number of messages received from the gateway.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "runs",
			Help:      "Number of command runs by command and result code.",
		}, []string{"command", "code"}),
		Denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "denied",
			Help:      "Number of refused invocations by command and reason.",
		}, []string{"command", "reason"}),
		UnknownNames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "unknown",
			Help:      "Number of prefixed messages naming no known command.",
		}),
		CommandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 5, 15},
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "latency",
			Help:      "How long command runs take in seconds.",
		}, []string{"command"}),
		Awarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "karma",
			Name:      "awarded",
			Help:      "Total karma awarded for chatting.",
		}),
	}
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Messages,
		m.Runs,
		m.Denials,
		m.UnknownNames,
		m.CommandLatency,
		m.Awarded,
	}
}

func (m *Metrics) Ran(name string, code command.Code, took time.Duration) {
	if code == "" {
		code = "NONE"
	}
	m.Runs.WithLabelValues(name, string(code)).Inc()
	m.CommandLatency.WithLabelValues(name).Observe(took.Seconds())
}

func (m *Metrics) Denied(name, reason string) {
	m.Denials.WithLabelValues(name, reason).Inc()
}

func (m *Metrics) Unknown() {
	m.UnknownNames.Inc()
}

// Award counts karma earned by chatting.
func (m *Metrics) Award(_ string, amount int64) {
	m.Awarded.Add(float64(amount))
}
