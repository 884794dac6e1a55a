package entrypool

import "github.com/prometheus/client_golang/prometheus"

// Collector exports tracker and pool stats as Prometheus metrics.
type Collector struct {
	tracker    *Tracker
	keys       *prometheus.Desc
	size       *prometheus.Desc
	checkedOut *prometheus.Desc
	grows      *prometheus.Desc
	gets       *prometheus.Desc
	puts       *prometheus.Desc
	trims      *prometheus.Desc
	discarded  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for t with metric names prefixed by namespace.
func NewCollector(namespace string, t *Tracker) *Collector {
	desc := func(subsystem, name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}
	return &Collector{
		tracker:    t,
		keys:       desc("tracker", "keys", "Number of keys with hits in the window."),
		size:       desc("pool", "buffers", "Number of buffer slots tracked by the pools."),
		checkedOut: desc("pool", "buffers_checked_out", "Number of buffers checked out of the pools."),
		grows:      desc("pool", "grows_total", "Number of times a pool grew."),
		gets:       desc("pool", "gets_total", "Number of buffers checked out."),
		puts:       desc("pool", "puts_total", "Number of buffers returned."),
		trims:      desc("pool", "trims_total", "Number of pool trims."),
		discarded:  desc("pool", "discarded_total", "Number of buffers released by trims."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.size
	ch <- c.checkedOut
	ch <- c.grows
	ch <- c.gets
	ch <- c.puts
	ch <- c.trims
	ch <- c.discarded
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var s Stats
	c.tracker.UpdateStats(&s)
	gauge := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge(c.keys, uint64(c.tracker.Len()))
	gauge(c.size, s.Size)
	gauge(c.checkedOut, s.CheckedOut)
	counter(c.grows, s.Grows)
	counter(c.gets, s.Gets)
	counter(c.puts, s.Puts)
	counter(c.trims, s.Trims)
	counter(c.discarded, s.Discarded)
}
