package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pufcma/cmd/pufcma/config"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()

	return out.String(), errOut.String(), err
}

// quickConfig converges on the first generation against a noiseless target.
func quickConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
target:
  n: 8
  k: 1
  noisiness: 0
attack:
  challenge_num: 32
  repeat: 2
  precision: -1
  polarity_challenges: 10
  workers: 2
evaluation:
  challenges: 200
`), 0o600))

	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "pufcma dev\n", out)
}

func TestAttack(t *testing.T) {
	out, logs, err := execute(t, "attack", "--config", quickConfig(t), "--seed", "5")
	require.NoError(t, err)
	require.Contains(t, out, "target:       1-XOR, 8-bit challenges")
	require.Contains(t, out, "searches:     1 (0 duplicates)")
	require.Contains(t, out, "generations:  1")
	require.Contains(t, out, "similarity:")
	require.Contains(t, logs, "run_id=")
	require.Contains(t, logs, "attack finished")
	require.Contains(t, logs, "level=DEBUG")
}

func TestAttack_InvalidFlags(t *testing.T) {
	_, _, err := execute(t, "attack", "--config", quickConfig(t), "--log-level", "loud")
	require.ErrorIs(t, err, config.ErrInvalid)

	_, _, err = execute(t, "attack", "--config", quickConfig(t), "--metrics-addr", "nine")
	require.ErrorIs(t, err, config.ErrInvalid)

	_, _, err = execute(t, "attack", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestServeMetrics_RequiresPrometheus(t *testing.T) {
	cfg := config.Default()
	cfg.Target.N = 8
	cfg.Attack.ChallengeNum = 32
	cfg.Attack.Precision = -1
	cfg.Telemetry.MetricsAddr = "127.0.0.1:1"
	var logs bytes.Buffer
	_, err := runAttack(t.Context(), cfg, &logs)
	require.Error(t, err)
	require.Contains(t, err.Error(), "metric_exporter is not prometheus")
}
