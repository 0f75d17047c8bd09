// Package config loads the YAML configuration shared by the planner, the
// playback viewer, the headless report and the simulation server.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/breach-planner/internal/scenario"
)

// Transports accepted by collaborators.simulation_transport.
const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

// Config is the root document.
type Config struct {
	Editor        EditorConfig        `yaml:"editor"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
	Simulation    SimulationConfig    `yaml:"simulation"`
	Server        ServerConfig        `yaml:"server"`
	Scenario      ScenarioConfig      `yaml:"scenario"`
	Log           LogConfig           `yaml:"log"`
}

// EditorConfig seeds a fresh editing session.
type EditorConfig struct {
	Rows             int                    `yaml:"rows"`
	Cols             int                    `yaml:"cols"`
	WaypointInterval int                    `yaml:"waypoint_interval"`
	ScatterThreshold float64                `yaml:"scatter_threshold"`
	Attacker         scenario.FactionParams `yaml:"attacker"`
	Defender         scenario.FactionParams `yaml:"defender"`
}

// CollaboratorsConfig locates the external services.
type CollaboratorsConfig struct {
	SimulationURL       string        `yaml:"simulation_url"`
	SimulationTransport string        `yaml:"simulation_transport"`
	AssistantURL        string        `yaml:"assistant_url"`
	Timeout             time.Duration `yaml:"timeout"` // 0 = no timeout
}

// SimulationConfig tunes the reference simulation.
type SimulationConfig struct {
	MaxTicks int   `yaml:"max_ticks"`
	Seed     int64 `yaml:"seed"`
	Verbose  bool  `yaml:"verbose"`
}

// ServerConfig is the listen address of cmd/simserver.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig is passed to logger.Init.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			Rows:             scenario.DefaultDim,
			Cols:             scenario.DefaultDim,
			WaypointInterval: scenario.DefaultWaypointInterval,
			ScatterThreshold: scenario.DefaultScatterThreshold,
			Attacker:         scenario.DefaultAttackerParams(),
			Defender:         scenario.DefaultDefenderParams(),
		},
		Collaborators: CollaboratorsConfig{
			SimulationURL:       "http://127.0.0.1:5000",
			SimulationTransport: TransportHTTP,
			AssistantURL:        "http://127.0.0.1:5000",
		},
		Simulation: SimulationConfig{
			MaxTicks: 500,
			Seed:     1,
		},
		Server:   ServerConfig{Addr: ":5000"},
		Scenario: DefaultScenario(),
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("config: %s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

// Validate checks ranges and cross-field consistency.
func (c *Config) Validate() error {
	e := c.Editor
	if e.Rows < scenario.MinDim || e.Rows > scenario.MaxDim {
		return invalid("editor.rows %d outside [%d,%d]", e.Rows, scenario.MinDim, scenario.MaxDim)
	}
	if e.Cols < scenario.MinDim || e.Cols > scenario.MaxDim {
		return invalid("editor.cols %d outside [%d,%d]", e.Cols, scenario.MinDim, scenario.MaxDim)
	}
	if e.WaypointInterval <= 0 {
		return invalid("editor.waypoint_interval must be positive")
	}
	if err := e.Attacker.Validate(); err != nil {
		return invalid("editor.attacker: %v", err)
	}
	if err := e.Defender.Validate(); err != nil {
		return invalid("editor.defender: %v", err)
	}

	switch c.Collaborators.SimulationTransport {
	case TransportHTTP, TransportWS:
	default:
		return invalid("collaborators.simulation_transport %q (want http or ws)", c.Collaborators.SimulationTransport)
	}
	if c.Collaborators.Timeout < 0 {
		return invalid("collaborators.timeout must not be negative")
	}
	if c.Simulation.MaxTicks <= 0 {
		return invalid("simulation.max_ticks must be positive")
	}
	if err := c.Scenario.Validate(); err != nil {
		return err
	}
	return nil
}
