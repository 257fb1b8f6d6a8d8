package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "cardauction/internal/log"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(l) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(l, &m), string(l))
		out = append(out, m)
	}
	return out
}

func TestLinesAreJSONKeyedByAction(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.Init("info", "") })

	applog.Audit(nil, "auction.started", map[string]any{"itemId": 4})
	applog.Error(nil, "storage.error", errors.New("boom"), nil)

	got := lines(t, &buf)
	require.Len(t, got, 2)

	assert.Equal(t, "auction.started", got[0]["action"])
	assert.Equal(t, "info", got[0]["level"])
	fields, ok := got[0]["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, fields["audit"])
	assert.EqualValues(t, 4, fields["itemId"])
	assert.NotEmpty(t, got[0]["ts"])

	assert.Equal(t, "error", got[1]["level"])
	assert.Equal(t, "boom", got[1]["err"])
}

func TestSetOutputAfterInit(t *testing.T) {
	dir := t.TempDir()
	applog.Init("warn", dir+"/out.log")
	t.Cleanup(func() { applog.Init("info", "") })

	var buf bytes.Buffer
	applog.SetOutput(&buf)
	applog.Debug(nil, "debug.kept.in.tests", nil)
	assert.Len(t, lines(t, &buf), 1, "SetOutput captures every level")
}
