package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"github.com/anggasct/crossway"
	"github.com/anggasct/crossway/pkg/feed"
	"github.com/anggasct/crossway/pkg/ledger"
)

func parseOptions(t *testing.T, args ...string) *Options {
	t.Helper()

	opts := NewOptions()
	fs := pflag.NewFlagSet("crossway", pflag.ContinueOnError)
	opts.AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	require.NoError(t, opts.Complete())
	return opts
}

func TestOptions_Defaults(t *testing.T) {
	opts := parseOptions(t)

	assert.Equal(t, crossway.DefaultPriorityThreshold, opts.PriorityThreshold)
	assert.Equal(t, crossway.DefaultLowWaterThreshold, opts.LowWaterThreshold)
	assert.Equal(t, time.Second, opts.Tick)
	assert.Equal(t, SourceRandom, opts.Source)
	assert.NotZero(t, opts.Seed, "seed defaults to the current time")
	assert.NoError(t, opts.Validate())
}

func TestOptions_Flags(t *testing.T) {
	opts := parseOptions(t,
		"--priority-lanes=AL2,CL2",
		"--road-order=D,C,B,A",
		"--seed=9",
		"--tick=250ms",
		"--steps=4",
		"-v=5",
	)

	assert.Equal(t, []string{"AL2", "CL2"}, opts.PriorityLanes)
	assert.Equal(t, []string{"D", "C", "B", "A"}, opts.RoadOrder)
	assert.Equal(t, int64(9), opts.Seed)
	assert.Equal(t, 250*time.Millisecond, opts.Tick)
	assert.Equal(t, 4, opts.Steps)
	assert.Equal(t, 5, opts.LogVerbosity)
	require.NoError(t, opts.Validate())

	intersection, err := crossway.NewIntersection(opts.IntersectionOptions(logr.Discard())...)
	require.NoError(t, err)
	assert.Equal(t, []string{"AL2", "CL2"}, intersection.PriorityOrder())
	assert.Equal(t, "DL2", intersection.SchedulingLanes()[0].ID())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero tick", []string{"--tick=0s"}},
		{"negative steps", []string{"--steps=-1"}},
		{"unknown source", []string{"--source=socket"}},
		{"file source without dir", []string{"--source=file", "--data-dir="}},
		{"threshold below low water", []string{"--priority-threshold=2", "--low-water-threshold=3"}},
		{"unknown priority lane", []string{"--priority-lanes=AL1"}},
		{"short road order", []string{"--road-order=A,B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := parseOptions(t, tt.args...)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestOptions_NewSource(t *testing.T) {
	opts := parseOptions(t, "--source=file", "--data-dir="+t.TempDir())
	source, err := opts.NewSource(logr.Discard())
	require.NoError(t, err)
	assert.IsType(t, &feed.FileSource{}, source)

	opts = parseOptions(t)
	source, err = opts.NewSource(logr.Discard())
	require.NoError(t, err)
	assert.IsType(t, &feed.RandomSource{}, source)
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	opts := parseOptions(t,
		"--tick=2ms",
		"--steps=3",
		"--seed=3",
		"--metrics-addr=",
		"--ledger="+path,
	)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, logr.Discard(), &out))

	output := out.String()
	assert.Contains(t, output, "Simulation Step 3")
	assert.Contains(t, output, "Active priority lane:")
	assert.Contains(t, output, "Simulation stopped after 3 steps.")
	assert.Contains(t, output, "[METRICS SUMMARY]")

	l, err := ledger.Open(path)
	require.NoError(t, err)
	defer l.Close()
	_, err = l.Count(context.Background())
	assert.NoError(t, err)
}

func TestRun_JSONAndDiagram(t *testing.T) {
	diagram := filepath.Join(t.TempDir(), "final.dot")
	opts := parseOptions(t,
		"--tick=2ms",
		"--steps=3",
		"--seed=5",
		"--metrics-addr=",
		"--json",
		"--dot="+diagram,
	)
	require.True(t, opts.JSON)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, logr.Discard(), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for k, line := range lines {
		var report crossway.TickReport
		require.NoError(t, sonnet.Unmarshal([]byte(line), &report), "line %d: %s", k, line)
		assert.Equal(t, uint64(k+1), report.Tick)
		assert.Contains(t, line, `"mode":"`)
	}
	assert.NotContains(t, out.String(), "Simulation Step")
	assert.NotContains(t, out.String(), "[METRICS SUMMARY]")

	content, err := os.ReadFile(diagram)
	require.NoError(t, err)
	assert.Contains(t, string(content), "digraph Intersection")
	assert.Contains(t, string(content), `label="tick 3"`)
}

func TestRun_Cancelled(t *testing.T) {
	opts := parseOptions(t, "--tick=1h", "--metrics-addr=", "--quiet")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, opts, logr.Discard(), &out))
	assert.Contains(t, out.String(), "Simulation stopped after 0 steps.")
	assert.NotContains(t, out.String(), "Simulation Step")
}

func TestServer(t *testing.T) {
	intersection, err := crossway.NewIntersection()
	require.NoError(t, err)
	require.NoError(t, intersection.AddVehicle("BL2", "b1"))

	var snapshot atomic.Pointer[crossway.Snapshot]
	server := httptest.NewServer(newMux(prometheus.NewRegistry(), snapshot.Load))
	defer server.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, _ := get("/status")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	snapshot.Store(intersection.Snapshot())
	code, body := get("/status")
	require.Equal(t, http.StatusOK, code)
	decoded, err := crossway.UnmarshalSnapshot([]byte(body))
	require.NoError(t, err)
	status, ok := decoded.Lane("BL2")
	require.True(t, ok)
	assert.Equal(t, []crossway.Vehicle{"b1"}, status.Vehicles)

	code, body = get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, strings.Contains(body, "crossway_"), "empty registry exposes no crossway metrics")
}
