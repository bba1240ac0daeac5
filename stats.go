// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Ticker identifies a GC statistic counter.
type Ticker int

const (
	// TickerGCSmallFile counts small files added to GC batches.
	TickerGCSmallFile Ticker = iota
	// TickerGCDiscardable counts files added to GC batches for their garbage.
	TickerGCDiscardable
	// TickerGCRemain counts picks that left enough work for another cycle.
	TickerGCRemain
	// TickerGCPickedBatches counts GC batches handed out by the picker.
	TickerGCPickedBatches
	numTickers
)

var tickerNames = [numTickers]struct{ name, help string }{
	TickerGCSmallFile:     {"gc_small_file", "Small blob files picked for GC."},
	TickerGCDiscardable:   {"gc_discardable", "Blob files picked for GC for their discardable data."},
	TickerGCRemain:        {"gc_remain", "GC picks that left more work for a later cycle."},
	TickerGCPickedBatches: {"gc_picked_batches", "GC batches picked."},
}

// String implements fmt.Stringer.
func (t Ticker) String() string {
	if t >= 0 && t < numTickers {
		return tickerNames[t].name
	}
	return "unknown"
}

// Stats collects GC statistics. A nil *Stats records nothing.
type Stats struct {
	tickers    [numTickers]prometheus.Counter
	batchBytes prometheus.Histogram
}

// NewStats returns a Stats whose metrics carry the given constant labels.
func NewStats(constLabels prometheus.Labels) *Stats {
	s := &Stats{}
	for t := range s.tickers {
		s.tickers[t] = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "titan",
			Name:        tickerNames[t].name + "_total",
			Help:        tickerNames[t].help,
			ConstLabels: constLabels,
		})
	}
	s.batchBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "titan",
		Name:        "gc_batch_bytes",
		Help:        "Input size of picked GC batches.",
		ConstLabels: constLabels,
		Buckets:     prometheus.ExponentialBuckets(1<<20, 4, 8),
	})
	return s
}

// RecordTick adds n to the counter of t.
func (s *Stats) RecordTick(t Ticker, n uint64) {
	if s == nil {
		return
	}
	s.tickers[t].Add(float64(n))
}

// RecordBatch records a picked GC batch of the given input size.
func (s *Stats) RecordBatch(bytes uint64) {
	if s == nil {
		return
	}
	s.tickers[TickerGCPickedBatches].Inc()
	s.batchBytes.Observe(float64(bytes))
}

// TickerCount returns the current value of the counter of t.
func (s *Stats) TickerCount(t Ticker) uint64 {
	if s == nil {
		return 0
	}
	var m dto.Metric
	if err := s.tickers[t].Write(&m); err != nil {
		return 0
	}
	return uint64(m.GetCounter().GetValue())
}

// BatchCount returns the number of batches recorded and their total size.
func (s *Stats) BatchCount() (count uint64, bytes uint64) {
	if s == nil {
		return 0, 0
	}
	var m dto.Metric
	if err := s.batchBytes.Write(&m); err != nil {
		return 0, 0
	}
	h := m.GetHistogram()
	return h.GetSampleCount(), uint64(h.GetSampleSum())
}

// Collectors returns the metrics to register with a prometheus.Registerer.
func (s *Stats) Collectors() []prometheus.Collector {
	if s == nil {
		return nil
	}
	cs := make([]prometheus.Collector, 0, numTickers+1)
	for _, c := range s.tickers {
		cs = append(cs, c)
	}
	return append(cs, s.batchBytes)
}
