package gateway

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/session"
)

const metricsNamespace = "voicebridge"

// statsCollector exports session and backend counters from one snapshot
// per scrape.
type statsCollector struct {
	sessions func() session.Stats
	backend  func() chatbase.Stats

	live      *prometheus.Desc
	opened    *prometheus.Desc
	ended     *prometheus.Desc
	turns     *prometheus.Desc
	greetings *prometheus.Desc
	voiced    *prometheus.Desc
	outcomes  *prometheus.Desc

	requests        *prometheus.Desc
	backendOutcomes *prometheus.Desc
}

func newStatsCollector(sessions func() session.Stats, backend func() chatbase.Stats) *statsCollector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, labels, nil)
	}
	return &statsCollector{
		sessions:        sessions,
		backend:         backend,
		live:            desc("sessions", "Live session count"),
		opened:          desc("sessions_opened_total", "Sessions opened"),
		ended:           desc("sessions_ended_total", "Sessions ended"),
		turns:           desc("turns_total", "Turns answered"),
		greetings:       desc("greetings_total", "Turns answered with the greeting"),
		voiced:          desc("voiced_total", "Replies synthesized to audio"),
		outcomes:        desc("turn_outcomes_total", "Turn outcomes by kind", "kind"),
		requests:        desc("backend_requests_total", "Chatbot backend requests"),
		backendOutcomes: desc("backend_outcomes_total", "Chatbot backend outcomes by kind", "kind"),
	}
}

// Describe implements prometheus.Collector.
func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.live, c.opened, c.ended, c.turns, c.greetings, c.voiced, c.outcomes} {
		ch <- d
	}
	if c.backend != nil {
		ch <- c.requests
		ch <- c.backendOutcomes
	}
}

// Collect implements prometheus.Collector.
func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.sessions()
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(st.Sessions))
	ch <- prometheus.MustNewConstMetric(c.opened, prometheus.CounterValue, float64(st.Opened))
	ch <- prometheus.MustNewConstMetric(c.ended, prometheus.CounterValue, float64(st.Ended))
	ch <- prometheus.MustNewConstMetric(c.turns, prometheus.CounterValue, float64(st.Turns))
	ch <- prometheus.MustNewConstMetric(c.greetings, prometheus.CounterValue, float64(st.Greetings))
	ch <- prometheus.MustNewConstMetric(c.voiced, prometheus.CounterValue, float64(st.Voiced))
	for _, kind := range chatbase.Kinds {
		ch <- prometheus.MustNewConstMetric(c.outcomes, prometheus.CounterValue, float64(st.Outcomes[kind]), string(kind))
	}

	if c.backend == nil {
		return
	}
	bs := c.backend()
	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(bs.Requests))
	for _, kind := range chatbase.Kinds {
		ch <- prometheus.MustNewConstMetric(c.backendOutcomes, prometheus.CounterValue, float64(bs.Count(kind)), string(kind))
	}
}

// metricsHandler serves a private registry so tests can build many servers.
func (s *Server) metricsHandler() fiber.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(newStatsCollector(s.sessions.Stats, s.config.BackendStats))
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
