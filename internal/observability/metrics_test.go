package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counts(t *testing.T) {
	m := NewMetrics()
	m.Exchange("hit")
	m.Exchange("hit")
	m.Exchange("miss")
	m.Table("critical", 2, false)
	m.Injury("torso", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.exchanges.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exchanges.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tables.WithLabelValues("critical", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rerolls.WithLabelValues("critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.injuries.WithLabelValues("torso", "true")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Exchange("fumble")
	path := filepath.Join(t.TempDir(), "duel.prom")

	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `duel_exchanges_total{outcome="fumble"} 1`)
}

func TestMetrics_WriteTextfileBadPath(t *testing.T) {
	assert.Error(t, NewMetrics().WriteTextfile(filepath.Join(t.TempDir(), "missing", "duel.prom")))
}
