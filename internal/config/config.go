package config

import "fmt"

// Host kinds.
const (
	// HostLua runs commands through the embedded Lua interpreter.
	HostLua = "lua"

	// HostPTY runs commands through an external process on a pty.
	HostPTY = "pty"
)

const (
	defaultPrompt       = "> "
	defaultHistoryLimit = 500

	// minWidthFloor is the narrowest console the engine reports
	// regardless of configuration or viewport.
	minWidthFloor = 80
)

// Config is the shellpane configuration document.
type Config struct {
	// Prompt is written before each input line.
	Prompt string `toml:"prompt" yaml:"prompt"`

	// HistoryLimit bounds the command history; the oldest entries are
	// dropped past it.
	HistoryLimit int `toml:"history_limit" yaml:"history_limit"`

	// MinWidth is the narrowest column count Width may report.
	MinWidth int `toml:"min_width" yaml:"min_width"`

	Margins Margins `toml:"margins" yaml:"margins"`
	Theme   Theme   `toml:"theme" yaml:"theme"`
	Host    Host    `toml:"host" yaml:"host"`
	Log     Log     `toml:"log" yaml:"log"`
	SSH     SSH     `toml:"ssh" yaml:"ssh"`
}

// Margins are horizontal viewport margins in columns.
type Margins struct {
	Left  int `toml:"left" yaml:"left"`
	Right int `toml:"right" yaml:"right"`
}

// Host selects and parameterizes the command host.
type Host struct {
	// Kind is HostLua or HostPTY.
	Kind string `toml:"kind" yaml:"kind"`

	// Command is the program a pty host runs. Ignored by the Lua host.
	Command string `toml:"command" yaml:"command"`

	// Args are passed to Command.
	Args []string `toml:"args" yaml:"args"`
}

// Log configures structured logging and rotation.
type Log struct {
	// Level is trace, debug, info, warn, or error.
	Level string `toml:"level" yaml:"level"`

	// File receives log output when set; stderr is used otherwise.
	File string `toml:"file" yaml:"file"`

	MaxSizeMB  int `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int `toml:"max_backups" yaml:"max_backups"`
}

// SSH configures the SSH frontend.
type SSH struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr" yaml:"addr"`

	// HostKey is a path to a PEM host key. A key is generated and stored
	// there when the file does not exist.
	HostKey string `toml:"host_key" yaml:"host_key"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Prompt:       defaultPrompt,
		HistoryLimit: defaultHistoryLimit,
		MinWidth:     minWidthFloor,
		Theme:        defaultTheme(),
		Host:         Host{Kind: HostLua},
		Log:          Log{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
		SSH:          SSH{Addr: ":2222", HostKey: "shellpane_host_key"},
	}
}

// normalize clamps out-of-range values to usable ones. Loaded documents
// pass through here before validation.
func (c *Config) normalize() {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaultHistoryLimit
	}
	if c.MinWidth < minWidthFloor {
		c.MinWidth = minWidthFloor
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = 0
	}
	def := defaultTheme()
	if c.Theme.Banner == "" {
		c.Theme.Banner = def.Banner
	}
	if c.Theme.Prompt == "" {
		c.Theme.Prompt = def.Prompt
	}
	if c.Theme.Error == "" {
		c.Theme.Error = def.Error
	}
	if c.Theme.Progress == "" {
		c.Theme.Progress = def.Progress
	}
}

// Validate reports configuration that cannot be used.
func (c *Config) Validate() error {
	switch c.Host.Kind {
	case HostLua, HostPTY:
	default:
		return fmt.Errorf("host kind %q: %w", c.Host.Kind, ErrUnknownHostKind)
	}
	if c.Host.Kind == HostPTY && c.Host.Command == "" {
		return fmt.Errorf("pty host requires a command")
	}
	if _, err := c.Theme.Palette(); err != nil {
		return err
	}
	return nil
}
