package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ticksTotal counts ticks by what the engine did with them
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kat_ticks_total",
		Help: "Scheduler ticks by engine result kind",
	}, []string{"kind"})

	paramsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kat_params_sent_total",
		Help: "OSC parameters handed to the transport",
	}, []string{"param"})

	sendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kat_send_errors_total",
		Help: "OSC sends that failed locally",
	})

	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kat_probes_total",
		Help: "Finished slot handshakes by outcome",
	}, []string{"result"})

	slotCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kat_slot_count",
		Help: "Slot count currently used for chunking",
	})
)
