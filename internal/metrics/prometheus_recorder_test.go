package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePopulateDuration(150 * time.Millisecond)
	pr.AddEntriesFormatted(3)
	pr.AddEntriesFormatted(0)
	pr.IncStyleFallback("not_found")
	pr.IncDirectiveResult(ResultSuccess)
	pr.IncDirectiveResult(Result(os.ErrNotExist))
	pr.IncDocumentResult(ResultSuccess)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 5)

	counters := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				name := mf.GetName()
				for _, l := range m.GetLabel() {
					name += "/" + l.GetValue()
				}
				counters[name] = c.GetValue()
			}
		}
	}
	require.InDelta(t, 3, counters["docbib_entries_formatted_total"], 0)
	require.InDelta(t, 1, counters["docbib_style_fallbacks_total/not_found"], 0)
	require.InDelta(t, 1, counters["docbib_directive_results_total/failed"], 0)
	require.InDelta(t, 1, counters["docbib_directive_results_total/success"], 0)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.ObservePopulateDuration(time.Second)
		pr.IncDocumentResult(ResultFailed)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.AddEntriesFormatted(2)

	path := filepath.Join(t.TempDir(), "docbib.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "docbib_entries_formatted_total 2")
}
