package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/webswing/internal/server"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestSimulateEmitsSnapshotsAndEvents(t *testing.T) {
	out, err := run(t, "simulate", "--log-level", "error",
		"--frames", "60", "--every", "20", "--swing-at", "5", "--release-at", "40")
	require.NoError(t, err)

	var types []string
	var last server.ServerMessage
	sc := bufio.NewScanner(bytes.NewBufferString(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var msg server.ServerMessage
		require.NoError(t, json.Unmarshal(sc.Bytes(), &msg), sc.Text())
		types = append(types, msg.Type+":"+msg.Event)
		if msg.Type == server.MessageSnapshot {
			last = msg
		}
	}
	require.NoError(t, sc.Err())

	assert.Equal(t, []string{
		"event:swing.started",
		"snapshot:",
		"event:swing.released",
		"snapshot:",
		"snapshot:",
	}, types)

	require.Len(t, last.Snapshots, 1)
	assert.EqualValues(t, 60, last.Frame)
	assert.Equal(t, "sim-0", last.Snapshots[0].ID)
	assert.False(t, last.Snapshots[0].Swinging)
}

func TestSimulateAimsCamera(t *testing.T) {
	out, err := run(t, "simulate", "--log-level", "error",
		"--frames", "1", "--every", "1", "--swing-at", "0", "--release-at", "0", "--yaw", "90")
	require.NoError(t, err)

	var msg server.ServerMessage
	require.NoError(t, json.Unmarshal(bytes.TrimSpace([]byte(out)), &msg))
	require.Len(t, msg.Snapshots, 1)
	snap := msg.Snapshots[0]
	assert.InDelta(t, 90, snap.ControlRotation.Yaw, 1e-9)
	assert.InDelta(t, 1, snap.CameraForward.Y, 1e-9)
	assert.Greater(t, snap.Velocity.Y, 0.0, "forward input follows the camera yaw")
}

func TestSimulateRejectsBadFlags(t *testing.T) {
	_, err := run(t, "simulate", "--frames", "0")
	assert.ErrorContains(t, err, "--frames")

	_, err = run(t, "simulate", "--log-level", "shout")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webswing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\nsimulation:\n  tick_rate: 0\n"), 0o600))

	_, err := run(t, "--config", path, "simulate", "--frames", "1")
	assert.ErrorContains(t, err, "tick_rate")
}
