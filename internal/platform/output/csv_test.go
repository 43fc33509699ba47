package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"openF1Poll/internal/modules/telemetry/domain"
)

func TestHeadersFromRecord(t *testing.T) {
	columns := HeadersFromRecord(domain.Record{"session_key": 1, " Team_Name": "x"})
	require.Equal(t, []Column{
		{ID: "team_name", Title: " TEAM_NAME"},
		{ID: "session_key", Title: "SESSION_KEY"},
	}, columns)
}

func TestCSVSink_WritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content\n"), 0o644))

	sink := NewCSVSink(path)
	err := sink.WriteBatch(context.Background(), batchOf(
		domain.Record{"driver_number": 1, "full_name": "Max VERSTAPPEN"},
		domain.Record{"driver_number": 44, "full_name": "Lewis, HAMILTON", "extra": "dropped"},
		domain.Record{"driver_number": 81},
	))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "DRIVER_NUMBER,FULL_NAME\n1,Max VERSTAPPEN\n44,\"Lewis, HAMILTON\"\n81,\n", string(content))
}

func TestCSVSink_RewritesWithAccumulatedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intervals.csv")
	sink := NewCSVSink(path)

	require.NoError(t, sink.WriteBatch(context.Background(), batchOf(domain.Record{"gap_to_leader": 0.1, "interval": 0.2})))
	require.NoError(t, sink.WriteBatch(context.Background(), batchOf(domain.Record{"gap_to_leader": 0.3, "interval": nil})))
	require.NoError(t, sink.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "GAP_TO_LEADER,INTERVAL\n0.1,0.2\n0.3,\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
