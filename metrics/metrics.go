// Package metrics exports the counters of vmix sessions to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phanxgames/vmix"
)

// StatsSource is implemented by *vmix.Session.
type StatsSource interface {
	Stats() vmix.Stats
}

// Collector reads the stats of a session on every scrape.
type Collector struct {
	src StatsSource

	frames       *prometheus.Desc
	failedFrames *prometheus.Desc
	sources      *prometheus.Desc
	recorders    *prometheus.Desc
	fading       *prometheus.Desc
	lastUpdate   *prometheus.Desc
	lastSources  *prometheus.Desc
	lastDraw     *prometheus.Desc
}

// NewCollector creates a collector for src. Every metric carries a
// "session" label set to name.
func NewCollector(src StatsSource, name string) *Collector {
	labels := prometheus.Labels{"session": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("vmix", "session", metric), help, nil, labels)
	}
	return &Collector{
		src:          src,
		frames:       desc("frames_total", "Number of frames produced."),
		failedFrames: desc("failed_frames_total", "Number of frames with at least one failed source."),
		sources:      desc("sources", "Number of sources in the session."),
		recorders:    desc("recorders", "Number of active recorders."),
		fading:       desc("fading", "Live fading of the output, 0 is clear and 1 is black."),
		lastUpdate:   desc("last_update_seconds", "Duration of the last frame update."),
		lastSources:  desc("last_sources_seconds", "Time spent rendering and updating sources in the last frame."),
		lastDraw:     desc("last_draw_seconds", "Time spent drawing the last frame."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.failedFrames
	ch <- c.sources
	ch <- c.recorders
	ch <- c.fading
	ch <- c.lastUpdate
	ch <- c.lastSources
	ch <- c.lastDraw
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(st.Frames))
	ch <- prometheus.MustNewConstMetric(c.failedFrames, prometheus.CounterValue, float64(st.FailedFrames))
	ch <- prometheus.MustNewConstMetric(c.sources, prometheus.GaugeValue, float64(st.Sources))
	ch <- prometheus.MustNewConstMetric(c.recorders, prometheus.GaugeValue, float64(st.Recorders))
	ch <- prometheus.MustNewConstMetric(c.fading, prometheus.GaugeValue, st.Fading)
	ch <- prometheus.MustNewConstMetric(c.lastUpdate, prometheus.GaugeValue, st.LastUpdate.Seconds())
	ch <- prometheus.MustNewConstMetric(c.lastSources, prometheus.GaugeValue, st.LastSourceTime.Seconds())
	ch <- prometheus.MustNewConstMetric(c.lastDraw, prometheus.GaugeValue, st.LastDrawTime.Seconds())
}
