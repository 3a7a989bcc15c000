package daemon

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/appliance-insights/internal/common/config"
	"gopkg.in/yaml.v3"
)

type (
	AppConfig = appConfig
)

// Config returns the configuration of the app.
func (a *App) Config() AppConfig {
	return a.config
}

// Addr returns the address the daemon listens on.
func (a *App) Addr() string {
	a.WaitReady()
	return a.daemon.Addr()
}

// NewForTests creates a new App instance for testing purposes.
// If daeConf is not nil, it is written as the dynamic configuration of the daemon.
func NewForTests(t *testing.T, conf *AppConfig, daeConf *config.Conf, args ...string) *App {
	t.Helper()

	var c appConfig
	if conf != nil {
		c = *conf
	}
	if daeConf != nil {
		c.Daemon.ConfigPath = GenerateTestDaemonConfig(t, daeConf)
	}

	p := GenerateTestConfig(t, &c)
	argsWithConf := []string{"--config", p}
	argsWithConf = append(argsWithConf, args...)

	a, err := New()
	require.NoError(t, err, "Setup: failed to create app")
	a.cmd.SetArgs(argsWithConf)
	return a
}

// GenerateTestDaemonConfig generates a temporary dynamic configuration file for testing.
func GenerateTestDaemonConfig(t *testing.T, daeConf *config.Conf) string {
	t.Helper()

	d, err := json.Marshal(daeConf)
	require.NoError(t, err, "Setup: failed to marshal dynamic server config for tests")
	daeConfPath := filepath.Join(t.TempDir(), "daemon-testconfig.json")
	require.NoError(t, os.WriteFile(daeConfPath, d, 0600), "Setup: failed to write dynamic config for tests")

	return daeConfPath
}

// GenerateTestConfig generates a temporary config file for testing.
func GenerateTestConfig(t *testing.T, origConf *AppConfig) string {
	t.Helper()

	var conf appConfig

	if origConf != nil {
		conf = *origConf
	}

	if conf.Verbosity == 0 {
		conf.Verbosity = 2
	}

	if conf.Daemon.ExplanationPath == "" {
		conf.Daemon.ExplanationPath = filepath.Join(t.TempDir(), "output_explanation.txt")
	}
	if conf.Daemon.SchedulesPath == "" {
		conf.Daemon.SchedulesPath = filepath.Join(t.TempDir(), "output.txt")
	}
	if conf.Daemon.RequestTimeout == 0 {
		conf.Daemon.RequestTimeout = 3 * time.Second
	}
	if conf.Daemon.ListenHost == "" {
		conf.Daemon.ListenHost = "localhost"
	}
	if conf.Daemon.MetricsHost == "" {
		conf.Daemon.MetricsHost = "localhost"
	}

	d, err := yaml.Marshal(conf)
	require.NoError(t, err, "Setup: failed to marshal config for tests")

	confPath := filepath.Join(t.TempDir(), "testconfig.yaml")
	require.NoError(t, os.WriteFile(confPath, d, 0600), "Setup: failed to write config for tests")

	return confPath
}

// SetOutput sets the output of the root command and its subcommands for tests.
func (a *App) SetOutput(w io.Writer) {
	a.cmd.SetOut(w)
}

// SetArgs set some arguments on root command for tests.
func (a *App) SetArgs(args ...string) {
	a.cmd.SetArgs(args)
}

// SetSilenceUsage set the SilenceUsage flag on root command for tests.
func (a *App) SetSilenceUsage(silence bool) {
	a.cmd.SilenceUsage = silence
}
