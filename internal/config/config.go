package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/bryanchriswhite/screenfreeze/internal/logger"
	"gopkg.in/yaml.v3"
)

// DefaultWindowName is used for both WM_NAME and WM_CLASS
const DefaultWindowName = "fullscreen-viewer"

// Config represents the application configuration
type Config struct {
	ShowCursor bool `json:"show_cursor" yaml:"show_cursor"`

	// X display name, empty means $DISPLAY
	Display string `json:"display" yaml:"display"`

	WindowName  string `json:"window_name" yaml:"window_name"`
	WindowClass string `json:"window_class" yaml:"window_class"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogPretty   bool   `json:"log_pretty" yaml:"log_pretty"`

	// Debug: write the frozen frame as BMP
	DumpPath string `json:"dump_path,omitempty" yaml:"dump_path,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		WindowName:  DefaultWindowName,
		WindowClass: DefaultWindowName,
		LogLevel:    string(logger.WarnLevel),
	}
}

// Validate checks values that cannot be caught by the YAML decoder
func (c *Config) Validate() error {
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q (debug, info, warn, error)", c.LogLevel)
	}
	if c.WindowName == "" {
		return fmt.Errorf("window_name must not be empty")
	}
	if c.WindowClass == "" {
		return fmt.Errorf("window_class must not be empty")
	}
	return nil
}

// Manager handles configuration. The file, when given, is only ever read.
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a configuration manager. An empty configFile yields
// the defaults.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{
		configPath: configFile,
		config:     Defaults(),
	}

	if configFile == "" {
		return m, nil
	}

	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config loaded")

	return m, nil
}

// load reads the configuration file over the defaults
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := *m.config
	return &cfg
}

// GetConfigPath returns the path of the loaded file, if any
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// SetShowCursor overrides cursor inclusion
func (m *Manager) SetShowCursor(show bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.ShowCursor = show
}

// SetDisplay overrides the X display name
func (m *Manager) SetDisplay(display string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.Display = display
}

// SetLogLevel overrides the log level
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.LogLevel = level
}

// SetLogPretty overrides console log formatting
func (m *Manager) SetLogPretty(pretty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.LogPretty = pretty
}

// SetDumpPath overrides the debug frame dump path
func (m *Manager) SetDumpPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.DumpPath = path
}
