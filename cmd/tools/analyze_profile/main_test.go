package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fileFlag, followersFlag, engageFlag, postsFlag = "", 0, 0, 0

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreFromMetrics(t *testing.T) {
	out, err := runCLI(t, "score", "--followers", "15400", "--engagement", "4.5", "--posts", "85")
	require.NoError(t, err)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 65, snap.Score.Score)
	assert.Equal(t, 40, snap.Breakdown.FollowerPoints)
	assert.Equal(t, 15, snap.Breakdown.EngagementPoints)
	assert.Equal(t, 10, snap.Breakdown.VolumePoints)
}

func TestScoreFromPayloadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"username":"natgeo","followersCount":60000,"postsCount":150}]`), 0o600))

	out, err := runCLI(t, "score", "--platform", "ig", "--file", path)
	require.NoError(t, err)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "natgeo", snap.Profile.Handle)
	assert.Equal(t, 80, snap.Score.Score)
}

func TestScoreRejectsEmptyPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	_, err := runCLI(t, "score", "--platform", "tiktok", "--file", path)
	assert.Error(t, err)
}
