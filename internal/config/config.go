package config

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"raptodb/internal/logging"
)

// Config is the fully resolved set of server settings, after flag parsing,
// --auth-implies--tls upgrade, and storage-file capacity resolution.
type Config struct {
	Name        string
	Addr        string
	DBPath      string
	Verbose     logging.Level
	SaveDelay   time.Duration
	SaveCount   uint64
	TLS         bool
	AuthPass    string
	DBSize      uint64
	StoragePath string
}

// Parse parses args (the tokens following the "server" subcommand) into a
// Config, applying spec.md §6's defaulting rules. When --config is not
// passed explicitly, Parse looks for an optional JSONC config file at
// $XDG_CONFIG_HOME/raptodb/config.jsonc, falling back to
// ~/.config/raptodb/config.jsonc, before falling back to flag defaults.
func Parse(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)

	name := fs.String("name", "", "server name (required)")
	addr := fs.String("addr", "", "listen address (default 127.0.0.1:random or :8443 with --tls)")
	dbPath := fs.String("db-path", ".", "directory holding the storage file")
	verbose := fs.String("verbose", string(logging.Warnings), "silent|warnings|noisy")
	save := fs.StringSlice("save", nil, "autosnap DELAY COUNT, e.g. --save 60 100")
	tls := fs.Bool("tls", false, "enable the encrypted session layer")
	auth := fs.String("auth", "", "require this password (implies --tls)")
	dbSize := fs.Uint64("db-size", 0, "store capacity in bytes (required unless the storage file exists)")
	configPath := fs.String("config", "", "optional JSONC file supplying defaults for unset flags")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// --save takes two tokens; pflag binds only the first to the flag and
	// leaves the second as a positional argument.
	if len(*save) == 1 && fs.NArg() > 0 {
		*save = append(*save, fs.Arg(0))
	}

	path := *configPath
	if path == "" {
		if discovered, ok := discoverConfigPath(); ok {
			path = discovered
		}
	}

	if path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}

		// Flags explicitly passed on the command line always win; the file
		// only fills in what wasn't set, mirroring the teacher's
		// defaults-then-file-then-flags precedence.
		if !fs.Changed("name") && fileCfg.Name != "" {
			*name = fileCfg.Name
		}
		if !fs.Changed("addr") && fileCfg.Addr != "" {
			*addr = fileCfg.Addr
		}
		if !fs.Changed("db-path") && fileCfg.DBPath != "" {
			*dbPath = fileCfg.DBPath
		}
		if !fs.Changed("verbose") && fileCfg.Verbose != "" {
			*verbose = fileCfg.Verbose
		}
		if !fs.Changed("save") && len(fileCfg.Save) > 0 {
			*save = fileCfg.Save
		}
		if !fs.Changed("tls") && fileCfg.TLS {
			*tls = fileCfg.TLS
		}
		if !fs.Changed("auth") && fileCfg.AuthPass != "" {
			*auth = fileCfg.AuthPass
		}
		if !fs.Changed("db-size") && fileCfg.DBSize != 0 {
			*dbSize = fileCfg.DBSize
		}
	}

	if *name == "" {
		return nil, ErrNameRequired
	}

	cfg := &Config{
		Name:     *name,
		DBPath:   normalizePath(*dbPath),
		Verbose:  logging.Level(*verbose),
		TLS:      *tls,
		AuthPass: *auth,
		DBSize:   *dbSize,
	}

	if cfg.AuthPass != "" {
		cfg.TLS = true
	}

	if *addr != "" {
		cfg.Addr = *addr
	} else if cfg.TLS {
		cfg.Addr = "127.0.0.1:8443"
	} else {
		cfg.Addr = "127.0.0.1:" + strconv.Itoa(10000+rand.IntN(10000))
	}

	cfg.SaveDelay, cfg.SaveCount = parseSave(*save)

	cfg.StoragePath = filepath.Join(cfg.DBPath, cfg.Name+".raptodb")

	if err := cfg.resolveCapacity(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseSave(tokens []string) (time.Duration, uint64) {
	if len(tokens) != 2 {
		return 0, 0
	}

	delaySecs, err1 := strconv.ParseUint(tokens[0], 10, 64)
	count, err2 := strconv.ParseUint(tokens[1], 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0
	}

	if count < 1 {
		count = 1 // server clamps count to at least 1, per spec.md §4.3.
	}

	return time.Duration(delaySecs) * time.Second, count
}

// resolveCapacity implements "--db-size is required unless the storage
// file already exists (in which case cap = max(file_size, requested))".
func (c *Config) resolveCapacity() error {
	info, err := os.Stat(c.StoragePath)
	exists := err == nil

	switch {
	case exists:
		if uint64(info.Size()) > c.DBSize {
			c.DBSize = uint64(info.Size())
		}
	case c.DBSize == 0:
		return ErrCapacityUndefined
	}

	return nil
}

// normalizePath converts Windows-style backslashes to forward slashes.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// fileConfig is the shape of an optional --config JSONC file. Every field is
// optional; zero values mean "not set, fall back to the flag default".
type fileConfig struct {
	Name     string   `json:"name,omitempty"`
	Addr     string   `json:"addr,omitempty"`
	DBPath   string   `json:"db_path,omitempty"` //nolint:tagliatelle
	Verbose  string   `json:"verbose,omitempty"`
	Save     []string `json:"save,omitempty"`
	TLS      bool     `json:"tls,omitempty"`
	AuthPass string   `json:"auth,omitempty"`
	DBSize   uint64   `json:"db_size,omitempty"` //nolint:tagliatelle
}

// discoverConfigPath looks for an optional JSONC config file when --config
// was not passed explicitly on the command line: first
// $XDG_CONFIG_HOME/raptodb/config.jsonc, then ~/.config/raptodb/config.jsonc.
// It reports ok=false, not an error, when neither location has a file -
// unlike an explicit --config path, where a missing file is a fatal error,
// auto-discovery is best-effort and silently falls back to flag defaults.
func discoverConfigPath() (path string, ok bool) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate := filepath.Join(xdg, "raptodb", "config.jsonc")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}

	candidate := filepath.Join(home, ".config", "raptodb", "config.jsonc")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true
	}

	return "", false
}

// loadConfigFile reads and parses a JSONC (JSON-with-comments) config file.
func loadConfigFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("config: invalid JSONC in %s: %w", path, err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("config: invalid JSON in %s: %w", path, err)
	}

	return cfg, nil
}
