// Package settings resolves process settings for the game server.
//
// Precedence, lowest first: built-in defaults, the TOML settings file,
// then flags and their environment variables.
package settings

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/wricardo/mcp-training/game2048/game/ledger"
)

// Settings holds everything main needs to start a server
type Settings struct {
	Host          string
	Port          int
	ConfigDir     string
	DataDir       string
	LedgerBackend string
	LogLevel      string
	LogFormat     string
	SessionTTL    time.Duration
	Ngrok         NgrokSettings
}

// NgrokSettings controls the optional public tunnel
type NgrokSettings struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// Defaults returns the settings used when nothing else is configured
func Defaults() Settings {
	return Settings{
		Host:          "localhost",
		Port:          8080,
		ConfigDir:     "configs",
		DataDir:       "data",
		LedgerBackend: ledger.BackendFile,
		LogLevel:      "info",
		LogFormat:     "console",
		SessionTTL:    24 * time.Hour,
	}
}

// FileSettings mirrors Settings with TOML friendly types
type FileSettings struct {
	Host          string    `toml:"host"`
	Port          int       `toml:"port"`
	ConfigDir     string    `toml:"config_dir"`
	DataDir       string    `toml:"data_dir"`
	LedgerBackend string    `toml:"ledger"`
	LogLevel      string    `toml:"log_level"`
	LogFormat     string    `toml:"log_format"`
	SessionTTL    string    `toml:"session_ttl"`
	Ngrok         FileNgrok `toml:"ngrok"`
}

// FileNgrok is the [ngrok] table of the settings file
type FileNgrok struct {
	Enabled   *bool  `toml:"enabled"`
	AuthToken string `toml:"auth_token"`
	Domain    string `toml:"domain"`
}

// LoadFile reads and parses a TOML settings file
func LoadFile(path string) (FileSettings, error) {
	var fs FileSettings
	b, err := os.ReadFile(path)
	if err != nil {
		return fs, err
	}
	if err := toml.Unmarshal(b, &fs); err != nil {
		return fs, fmt.Errorf("parse %s: %w", path, err)
	}
	return fs, nil
}

// DefaultPath returns ~/.game2048/settings.toml, or "" without a home directory
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".game2048", "settings.toml")
	}
	return ""
}

// FileExists reports whether p exists
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ApplyFile copies non-zero file values into s, skipping keys whose flag was
// set explicitly. changed is keyed by flag name.
func (s *Settings) ApplyFile(fs FileSettings, changed map[string]bool) error {
	set := setter{changed: changed}

	set.str("host", fs.Host, &s.Host)
	set.str("config-dir", fs.ConfigDir, &s.ConfigDir)
	set.str("data-dir", fs.DataDir, &s.DataDir)
	set.str("ledger", fs.LedgerBackend, &s.LedgerBackend)
	set.str("log-level", fs.LogLevel, &s.LogLevel)
	set.str("log-format", fs.LogFormat, &s.LogFormat)
	set.str("ngrok-auth", fs.Ngrok.AuthToken, &s.Ngrok.AuthToken)
	set.str("ngrok-domain", fs.Ngrok.Domain, &s.Ngrok.Domain)
	set.integer("port", fs.Port, &s.Port)
	set.boolean("ngrok", fs.Ngrok.Enabled, &s.Ngrok.Enabled)

	return set.duration("session-ttl", fs.SessionTTL, &s.SessionTTL)
}

// Validate checks the combined settings
func (s Settings) Validate() error {
	var errs []error
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", s.Port))
	}
	if s.ConfigDir == "" {
		errs = append(errs, errors.New("config dir is required"))
	}
	if s.DataDir == "" {
		errs = append(errs, errors.New("data dir is required"))
	}
	switch s.LedgerBackend {
	case "", ledger.BackendFile, ledger.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ledger.ErrUnknownBackend, s.LedgerBackend))
	}
	switch s.LogFormat {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", s.LogFormat))
	}
	if s.SessionTTL < 0 {
		errs = append(errs, errors.New("session ttl must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr is the host:port the HTTP server listens on
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LedgerPath is where the configured score ledger lives inside DataDir
func (s Settings) LedgerPath() string {
	if s.LedgerBackend == ledger.BackendSQLite {
		return filepath.Join(s.DataDir, "scores.db")
	}
	return filepath.Join(s.DataDir, "Score.txt")
}

type setter struct {
	changed map[string]bool
}

func (s setter) skip(flag string) bool {
	return s.changed[flag]
}

func (s setter) str(flag, v string, dst *string) {
	if v != "" && !s.skip(flag) {
		*dst = v
	}
}

func (s setter) integer(flag string, v int, dst *int) {
	if v != 0 && !s.skip(flag) {
		*dst = v
	}
}

func (s setter) boolean(flag string, v *bool, dst *bool) {
	if v != nil && !s.skip(flag) {
		*dst = *v
	}
}

func (s setter) duration(flag, v string, dst *time.Duration) error {
	if v == "" || s.skip(flag) {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", flag, v, err)
	}
	*dst = d
	return nil
}
