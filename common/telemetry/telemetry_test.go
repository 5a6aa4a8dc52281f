package telemetry

import (
	"bytes"
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/logger"
)

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()
	require.NotNil(t, info)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.NumCPU(), info.CPULogical)
	assert.NotEmpty(t, info.Hostname)
	assert.Same(t, info, GetSystemInfo())
}

func TestRecordDuration(t *testing.T) {
	var buf bytes.Buffer
	tel := New(0, logger.NewWithWriter(&buf, "debug", "json"))

	tel.RecordDuration("ledger.edit", time.Now().Add(-5*time.Millisecond))
	tel.RecordEvent("ledger.saved", map[string]any{"partition": "OT_A_2024"})

	assert.Contains(t, buf.String(), `"operation":"ledger.edit"`)
	assert.Contains(t, buf.String(), `"event":"ledger.saved"`)
}

func TestStopWithoutStart(t *testing.T) {
	tel := New(0, logger.Discard())
	assert.NoError(t, tel.Stop(context.Background()))
}
