package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values like "10ms" parse.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Client  ClientConfig  `toml:"client"`
	Network NetworkConfig `toml:"network"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name        string `toml:"name"`
	BindAddress string `toml:"bind_address"`
	ArenaPath   string `toml:"arena_path"`
}

type ClientConfig struct {
	ConnectAddress string   `toml:"connect_address"`
	ConnectRetries int      `toml:"connect_retries"`
	RetryDelay     Duration `toml:"retry_delay"`
	// InitTimeout bounds how long the client waits for the server's
	// initial snapshot before giving up.
	InitTimeout Duration `toml:"init_timeout"`

	// Camera tuning. Applied purely locally, never networked.
	CameraSpeed           float32 `toml:"camera_speed"`
	CameraThirdPersonBack float32 `toml:"camera_3rd_person_back"`
	CameraThirdPersonUp   float32 `toml:"camera_3rd_person_up"`
	MouseSensitivity      float32 `toml:"mouse_sensitivity"`
	PitchMin              float32 `toml:"pitch_min"`
	PitchMax              float32 `toml:"pitch_max"`
}

type NetworkConfig struct {
	// TickRate is how often the loop polls for work; gamelogic itself
	// always advances in fixed steps and catches up if polling lags.
	TickRate     Duration `toml:"tick_rate"`
	InQueueSize  int      `toml:"in_queue_size"`
	OutQueueSize int      `toml:"out_queue_size"`
	WriteTimeout Duration `toml:"write_timeout"`
	// MaxMsgsPerTick caps how many messages one connection can get
	// processed per tick, so a flooding client cannot starve the others.
	MaxMsgsPerTick int `toml:"max_msgs_per_tick"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:        "rustcycles",
			BindAddress: "127.0.0.1:26000",
			ArenaPath:   "data/arena.yaml",
		},
		Client: ClientConfig{
			ConnectAddress: "127.0.0.1:26000",
			ConnectRetries: 300,
			RetryDelay:     Duration{10 * time.Millisecond},
			InitTimeout:    Duration{5 * time.Second},

			CameraSpeed:           10,
			CameraThirdPersonBack: 2,
			CameraThirdPersonUp:   1,
			MouseSensitivity:      0.4,
			PitchMin:              -89,
			PitchMax:              89,
		},
		Network: NetworkConfig{
			TickRate:       Duration{4 * time.Millisecond},
			InQueueSize:    128,
			OutQueueSize:   256,
			WriteTimeout:   Duration{10 * time.Second},
			MaxMsgsPerTick: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
