package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))

	SyncCycles.WithLabelValues("ok").Inc()
	QueueDepth.Set(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["offsync_sync_cycles"])
	assert.True(t, names["offsync_queue_depth"])
}
