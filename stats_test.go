// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	s := NewStats(prometheus.Labels{"cf": "default"})
	s.RecordTick(TickerGCSmallFile, 2)
	s.RecordTick(TickerGCSmallFile, 1)
	s.RecordTick(TickerGCRemain, 1)
	s.RecordBatch(1 << 20)
	s.RecordBatch(3 << 20)

	require.Equal(t, uint64(3), s.TickerCount(TickerGCSmallFile))
	require.Equal(t, uint64(0), s.TickerCount(TickerGCDiscardable))
	require.Equal(t, uint64(1), s.TickerCount(TickerGCRemain))
	require.Equal(t, uint64(2), s.TickerCount(TickerGCPickedBatches))
	n, bytes := s.BatchCount()
	require.Equal(t, uint64(2), n)
	require.Equal(t, uint64(4<<20), bytes)

	reg := prometheus.NewRegistry()
	for _, c := range s.Collectors() {
		require.NoError(t, reg.Register(c))
	}
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]float64)
	for _, f := range families {
		m := f.GetMetric()[0]
		require.Equal(t, "cf", m.GetLabel()[0].GetName())
		if c := m.GetCounter(); c != nil {
			names[f.GetName()] = c.GetValue()
		} else {
			names[f.GetName()] = float64(m.GetHistogram().GetSampleCount())
		}
	}
	require.Equal(t, map[string]float64{
		"titan_gc_small_file_total":     3,
		"titan_gc_discardable_total":    0,
		"titan_gc_remain_total":         1,
		"titan_gc_picked_batches_total": 2,
		"titan_gc_batch_bytes":          2,
	}, names)
}

func TestStatsNil(t *testing.T) {
	var s *Stats
	s.RecordTick(TickerGCRemain, 1)
	s.RecordBatch(10)
	require.Equal(t, uint64(0), s.TickerCount(TickerGCRemain))
	n, bytes := s.BatchCount()
	require.Zero(t, n)
	require.Zero(t, bytes)
	require.Nil(t, s.Collectors())
	require.Equal(t, "gc_remain", TickerGCRemain.String())
}
