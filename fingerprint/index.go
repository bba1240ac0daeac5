// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fingerprint

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/titankv/titan/blob"
	"github.com/titankv/titan/internal/base"
)

// IndexOptions configures an Index.
type IndexOptions struct {
	// MaxSize bounds the number of records held by the index. Records added
	// while the index is full are dropped.
	MaxSize int
	// MaxMatch bounds the number of records returned by a single call to
	// FindSimilarRecords.
	MaxMatch int
	// Calculator configures the fingerprint calculator owned by the index.
	Calculator Config
	// Logger receives trace events for every insert and query when tracing
	// is enabled. Defaults to base.NoopLoggerAndTracer.
	Logger base.LoggerAndTracer
	// MetricLabels are attached as constant labels to the metrics exported
	// by the index when it is registered as a prometheus.Collector.
	MetricLabels prometheus.Labels
}

// Record is a resembling record returned by FindSimilarRecords.
type Record struct {
	Key   string
	Index blob.BlobIndex
}

// IndexMetrics is a snapshot of the counters maintained by an Index.
type IndexMetrics struct {
	// Size is the number of records currently indexed.
	Size int
	// AddCount is the number of records inserted by AddRecord.
	AddCount uint64
	// FindCount is the number of FindSimilarRecords calls.
	FindCount uint64
	// FoundCount is the number of records handed out by FindSimilarRecords,
	// plus whatever callers reported through AddFoundRecord.
	FoundCount uint64
	// SuccessfulCount is the number of successful delta encodings reported
	// through AddSuccessfulFP.
	SuccessfulCount uint64
}

// slotFeature is a reverse-index entry: the super-feature stored for a key in
// a given slot.
type slotFeature struct {
	slot    int
	feature uint64
}

// Index maps super-features to the keys of the records that carry them, so
// that records resembling a new value can be found. Finding a record also
// claims it: every record returned by FindSimilarRecords is removed from the
// index.
//
// All operations are serialized by a single mutex, which keeps the forward
// map, the reverse map and the locator map mutually consistent.
type Index struct {
	calc     *Calculator
	maxSize  int
	maxMatch int
	logger   base.LoggerAndTracer

	mu struct {
		sync.Mutex
		size int
		// forward[slot] maps a super-feature to the sorted keys carrying it
		// in that slot.
		forward []*swiss.Map[uint64, []string]
		// reverse maps a key to its forward entries, one per slot.
		reverse map[string][]slotFeature
		// locators maps a key to the location of its value.
		locators map[string]blob.BlobIndex

		addCount        uint64
		findCount       uint64
		foundCount      uint64
		successfulCount uint64
	}

	desc struct {
		size, add, find, found, successful *prometheus.Desc
	}
}

var _ prometheus.Collector = (*Index)(nil)

// NewIndex returns an empty Index.
func NewIndex(opts IndexOptions) (*Index, error) {
	if opts.MaxSize < 0 {
		return nil, errors.Newf("fingerprint: max size must not be negative, got %d", opts.MaxSize)
	}
	if opts.MaxMatch <= 0 {
		return nil, errors.Newf("fingerprint: max match must be positive, got %d", opts.MaxMatch)
	}
	calc, err := NewCalculator(opts.Calculator)
	if err != nil {
		return nil, err
	}
	idx := &Index{
		calc:     calc,
		maxSize:  opts.MaxSize,
		maxMatch: opts.MaxMatch,
		logger:   opts.Logger,
	}
	if idx.logger == nil {
		idx.logger = base.NoopLoggerAndTracer{}
	}
	idx.mu.forward = make([]*swiss.Map[uint64, []string], calc.SuperFeatureNum())
	for i := range idx.mu.forward {
		idx.mu.forward[i] = swiss.New[uint64, []string](0)
	}
	idx.mu.reverse = make(map[string][]slotFeature)
	idx.mu.locators = make(map[string]blob.BlobIndex)

	newDesc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("titan", "fp_index", name), help, nil, opts.MetricLabels)
	}
	idx.desc.size = newDesc("records", "Number of records in the resemblance index.")
	idx.desc.add = newDesc("added_total", "Records added to the resemblance index.")
	idx.desc.find = newDesc("queries_total", "Resemblance queries served.")
	idx.desc.found = newDesc("found_total", "Resembling records handed out.")
	idx.desc.successful = newDesc("successful_total", "Successful delta encodings reported by callers.")
	return idx, nil
}

// CalculateFP returns the super-feature vector of value. It does not touch
// the index and may be called concurrently with any other method.
func (idx *Index) CalculateFP(value []byte) Features {
	return idx.calc.CalculateFP(value)
}

// AddRecord indexes key with the given super-features and locator. If key is
// already indexed its previous record is replaced. The record is silently
// dropped if the index is full; callers can observe this through GetSize.
func (idx *Index) AddRecord(key string, features Features, loc blob.BlobIndex) {
	if len(features) != len(idx.mu.forward) {
		idx.logger.Errorf("fingerprint: dropping record %q with %d super-features, expected %d",
			key, len(features), len(idx.mu.forward))
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.mu.size >= idx.maxSize {
		return
	}
	idx.removeLocked(key)
	entries := make([]slotFeature, len(features))
	for slot, feature := range features {
		idx.insertForwardLocked(slot, feature, key)
		entries[slot] = slotFeature{slot: slot, feature: feature}
	}
	idx.mu.reverse[key] = entries
	idx.mu.locators[key] = loc
	idx.mu.size++
	idx.mu.addCount++

	if ctx := context.TODO(); idx.logger.IsTracingEnabled(ctx) {
		idx.logger.Eventf(ctx, "fp index: add %q features=%v loc=%s size=%d", key, features, loc, idx.mu.size)
	}
}

// FindSimilarRecords returns up to MaxMatch records that share at least one
// super-feature with value. Slots are scanned in order, so matches in lower
// slots are preferred when the result is truncated. Every returned record is
// removed from the index, and so is key itself if it was indexed: a query
// announces that key is about to be rewritten and must not match its own
// previous version.
func (idx *Index) FindSimilarRecords(key string, value []byte) []Record {
	features := idx.calc.CalculateFP(value)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(key)

	var similar []string
	seen := make(map[string]struct{}, idx.maxMatch)
	for slot, feature := range features {
		keys, _ := idx.mu.forward[slot].Get(feature)
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			similar = append(similar, k)
			if len(similar) == idx.maxMatch {
				break
			}
		}
		if len(similar) == idx.maxMatch {
			break
		}
	}

	records := make([]Record, 0, len(similar))
	for _, k := range similar {
		records = append(records, Record{Key: k, Index: idx.mu.locators[k]})
		idx.removeLocked(k)
	}
	idx.mu.findCount++
	idx.mu.foundCount += uint64(len(records))

	if ctx := context.TODO(); idx.logger.IsTracingEnabled(ctx) {
		idx.logger.Eventf(ctx, "fp index: find %q size=%d max-match=%d found=%d add=%d found-total=%d successful=%d",
			key, idx.mu.size, idx.maxMatch, len(records), idx.mu.addCount, idx.mu.foundCount, idx.mu.successfulCount)
	}
	return records
}

// Remove drops the record for key. It returns false if key was not indexed.
func (idx *Index) Remove(key string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.removeLocked(key)
}

// Contains returns true if key is indexed.
func (idx *Index) Contains(key string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	_, ok := idx.mu.reverse[key]
	return ok
}

// AddSuccessfulFP records n successful delta encodings against records found
// through the index.
func (idx *Index) AddSuccessfulFP(n int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.mu.successfulCount += uint64(n)
}

// AddFoundRecord records n resembling records found by the caller.
func (idx *Index) AddFoundRecord(n int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.mu.foundCount += uint64(n)
}

// GetSize returns the number of indexed records.
func (idx *Index) GetSize() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.mu.size
}

// GetFPInfo returns a one-line summary of the index counters.
func (idx *Index) GetFPInfo() string {
	m := idx.Metrics()
	return fmt.Sprintf("ValidAddRecordCnt:%d;ValidFindSimilarCnt:%d;SuccessfulCnt:%d;FoundRecordCnt:%d",
		m.AddCount, m.FindCount, m.SuccessfulCount, m.FoundCount)
}

// Metrics returns a consistent snapshot of the index counters.
func (idx *Index) Metrics() IndexMetrics {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return IndexMetrics{
		Size:            idx.mu.size,
		AddCount:        idx.mu.addCount,
		FindCount:       idx.mu.findCount,
		FoundCount:      idx.mu.foundCount,
		SuccessfulCount: idx.mu.successfulCount,
	}
}

// String implements fmt.Stringer.
func (idx *Index) String() string {
	return fmt.Sprintf("max_size: %d, max_match: %d, %s", idx.maxSize, idx.maxMatch, idx.calc)
}

// Describe implements prometheus.Collector.
func (idx *Index) Describe(ch chan<- *prometheus.Desc) {
	ch <- idx.desc.size
	ch <- idx.desc.add
	ch <- idx.desc.find
	ch <- idx.desc.found
	ch <- idx.desc.successful
}

// Collect implements prometheus.Collector.
func (idx *Index) Collect(ch chan<- prometheus.Metric) {
	m := idx.Metrics()
	ch <- prometheus.MustNewConstMetric(idx.desc.size, prometheus.GaugeValue, float64(m.Size))
	ch <- prometheus.MustNewConstMetric(idx.desc.add, prometheus.CounterValue, float64(m.AddCount))
	ch <- prometheus.MustNewConstMetric(idx.desc.find, prometheus.CounterValue, float64(m.FindCount))
	ch <- prometheus.MustNewConstMetric(idx.desc.found, prometheus.CounterValue, float64(m.FoundCount))
	ch <- prometheus.MustNewConstMetric(idx.desc.successful, prometheus.CounterValue, float64(m.SuccessfulCount))
}

// insertForwardLocked adds key to the keys carrying feature in slot, keeping
// them sorted.
func (idx *Index) insertForwardLocked(slot int, feature uint64, key string) {
	m := idx.mu.forward[slot]
	keys, _ := m.Get(feature)
	i, found := slices.BinarySearch(keys, key)
	if found {
		return
	}
	m.Put(feature, slices.Insert(keys, i, key))
}

// removeLocked drops every entry of key from the three maps. It returns false
// if key was not indexed.
func (idx *Index) removeLocked(key string) bool {
	entries, ok := idx.mu.reverse[key]
	if !ok {
		return false
	}
	for _, e := range entries {
		m := idx.mu.forward[e.slot]
		keys, _ := m.Get(e.feature)
		if i, found := slices.BinarySearch(keys, key); found {
			keys = slices.Delete(keys, i, i+1)
		}
		if len(keys) == 0 {
			m.Delete(e.feature)
		} else {
			m.Put(e.feature, keys)
		}
	}
	delete(idx.mu.reverse, key)
	delete(idx.mu.locators, key)
	idx.mu.size--
	return true
}
