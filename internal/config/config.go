// ABOUTME: Sampler configuration loaded with viper
// ABOUTME: Merges defaults, an optional YAML file, environment variables and CLI flags
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. RESONATE_SAMPLER_BACKEND
const EnvPrefix = "RESONATE_SAMPLER"

// Backend names
const (
	BackendOto    = "oto"
	BackendMalgo  = "malgo"
	BackendMemory = "memory"
)

type Settings struct {
	Backend string // oto, malgo or memory

	Device struct {
		SampleRate int // output sample rate in Hz
		Channels   int // output channel count, 1 or 2
	}

	Log struct {
		File string // log file path
	}

	TUI bool // true to run the sample pad UI in play mode

	Metrics struct {
		Addr string // listen address for /metrics, empty disables it
	}
}

// New returns a viper instance with defaults and environment binding
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("backend", BackendOto)
	v.SetDefault("device.samplerate", 48000)
	v.SetDefault("device.channels", 2)
	v.SetDefault("log.file", "resonate-sampler.log")
	v.SetDefault("tui", true)
	v.SetDefault("metrics.addr", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (explicit path, or config.yaml in the default
// locations) and returns validated settings
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if err := readConfig(v, configFile); err != nil {
		return nil, err
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func readConfig(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range defaultConfigPaths() {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "resonate-sampler"))
	}
	return paths
}

// Validate checks the settings for unusable values
func (s *Settings) Validate() error {
	switch s.Backend {
	case BackendOto, BackendMalgo, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (supported: %s, %s, %s)", s.Backend, BackendOto, BackendMalgo, BackendMemory)
	}
	if s.Device.SampleRate <= 0 {
		return fmt.Errorf("invalid device sample rate %d", s.Device.SampleRate)
	}
	if s.Device.Channels < 1 || s.Device.Channels > 2 {
		return fmt.Errorf("invalid device channel count %d (supported: 1, 2)", s.Device.Channels)
	}
	return nil
}

// BindFlags defines the global flags on cmd and binds them to v
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String("backend", v.GetString("backend"), "Audio backend: oto, malgo or memory")
	flags.Int("sample-rate", v.GetInt("device.samplerate"), "Device sample rate in Hz")
	flags.Int("channels", v.GetInt("device.channels"), "Device channel count (1 or 2)")
	flags.String("log-file", v.GetString("log.file"), "Log file path")
	flags.Bool("no-tui", !v.GetBool("tui"), "Disable TUI, use streaming logs instead")
	flags.String("metrics-addr", v.GetString("metrics.addr"), "Serve Prometheus metrics on this address")

	bindings := map[string]string{
		"backend":           "backend",
		"device.samplerate": "sample-rate",
		"device.channels":   "channels",
		"log.file":          "log-file",
		"metrics.addr":      "metrics-addr",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}

// ApplyFlags copies flags that need inverting into v
func ApplyFlags(cmd *cobra.Command, v *viper.Viper) {
	if f := cmd.Flags().Lookup("no-tui"); f != nil && f.Changed {
		v.Set("tui", f.Value.String() != "true")
	}
}
