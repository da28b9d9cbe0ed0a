package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anggasct/crossway"
)

// StatusFunc returns the latest published snapshot, or nil before the first one
type StatusFunc func() *crossway.Snapshot

// newMux serves Prometheus metrics, the latest snapshot and a health check
func newMux(gatherer prometheus.Gatherer, status StatusFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		snapshot := status()
		if snapshot == nil {
			http.Error(w, "intersection not started", http.StatusServiceUnavailable)
			return
		}
		data, err := crossway.MarshalSnapshot(snapshot)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
