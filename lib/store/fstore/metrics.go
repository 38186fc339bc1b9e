package fstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/fsKV/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	opInsert = "insert"
	opLookup = "lookup"
	opRemove = "remove"
)

// observe records the outcome and latency of one store operation
//
//	fskv_ops_total{op="insert",result="ok"}
//	fskv_ops_total{op="insert",result="alreadyexists"}
//	fskv_op_duration_seconds{op="insert"}
func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = strings.ToLower(store.CodeOf(err).String())
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`fskv_ops_total{op=%q,result=%q}`, op, result)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`fskv_op_duration_seconds{op=%q}`, op)).UpdateDuration(start)
}

// openStores maps a root directory to the store currently bound to it
var openStores = xsync.NewMapOf[string, *Store]()

// registerEntriesGauge exposes the size of the store bound to root as
//
//	fskv_entries{root="data"}
//
// The gauge reads from openStores, so reopening a root rebinds it to the new store.
func registerEntriesGauge(s *Store) {
	openStores.Store(s.root, s)
	metrics.GetOrCreateGauge(fmt.Sprintf(`fskv_entries{root=%q}`, s.root), func() float64 {
		if cur, ok := openStores.Load(s.root); ok {
			return float64(cur.size)
		}
		return 0
	})
}

// unregisterEntriesGauge unbinds s from its root, the gauge then reports 0
func unregisterEntriesGauge(s *Store) {
	openStores.Compute(s.root, func(cur *Store, loaded bool) (*Store, bool) {
		return cur, !loaded || cur == s
	})
}
