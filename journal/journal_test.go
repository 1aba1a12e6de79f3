package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReplay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Append(NewPacketRecord(1000, map[string]any{"source": "e"})))
	require.NoError(t, w.Append(NewGapRecord(2000, "e:t", 3, 5)))
	require.NoError(t, w.Close())

	records, err := Replay(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, EventPacket, records[0].EventType)
	assert.Equal(t, EventGap, records[1].EventType)
	assert.EqualValues(t, 2, records[1].Data["gap"])
}

func TestReplaySkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("\n\n{\"event_type\":\"ERROR\",\"timestamp\":1,\"data\":{}}\n\n"), 0o644))

	records, err := Replay(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, EventError, records[0].EventType)
}

func TestReplayTornTailSkippedLoudly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	content := "{\"event_type\":\"PACKET\",\"timestamp\":1,\"data\":{}}\n" +
		"{\"event_type\":\"PACKET\",\"timestamp\":2,\"dat" // truncated, no closing brace/newline
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := Replay(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestReplayMidFileCorruptionFailsLoudly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	content := "not json at all\n{\"event_type\":\"PACKET\",\"timestamp\":2,\"data\":{}}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Replay(path)
	require.Error(t, err)
}
