// Package config loads server settings from YAML, a .env file and the
// environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"brawlers/battle"
)

// DefaultConfigFile is read when no path is given.
const DefaultConfigFile = "brawlers.yaml"

type Config struct {
	Server ServerConfig  `yaml:"server"`
	Sim    SimConfig     `yaml:"sim"`
	Battle battle.Timing `yaml:"battle"`
	Store  StoreConfig   `yaml:"store"`
	SQLite SQLiteConfig  `yaml:"sqlite"`
	ENS    ENSConfig     `yaml:"ens"`
	Auth   AuthConfig    `yaml:"auth"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// SimConfig paces the playground rooms.
type SimConfig struct {
	TickHz      int     `yaml:"tick_hz"`
	BroadcastHz int     `yaml:"broadcast_hz"`
	ViewportW   float64 `yaml:"viewport_w"`
	ViewportH   float64 `yaml:"viewport_h"`
}

type StoreConfig struct {
	StartingPoints int `yaml:"starting_points"`
}

// SQLiteConfig holds configuration for the SQLite ledger.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ENSConfig points at an Ethereum mainnet JSON-RPC endpoint. Search is
// disabled when RPCURL is empty.
type ENSConfig struct {
	RPCURL  string        `yaml:"rpc_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	Issuer   string        `yaml:"issuer"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Sim: SimConfig{
			TickHz:      60,
			BroadcastHz: 20,
			ViewportW:   1200,
			ViewportH:   600,
		},
		Battle: battle.DefaultTiming(),
		Store:  StoreConfig{StartingPoints: 1000},
		SQLite: SQLiteConfig{Path: "data/brawlers.db"},
		ENS:    ENSConfig{Timeout: 10 * time.Second},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
			Issuer:   "BitBrawlers",
		},
	}
}

// InitConfig loads .env into the process environment if one exists.
func InitConfig() {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("config: reading .env: %v", err)
		}
		return
	}

	log.Println("Successfully loaded environment variables")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v, err := GetEnvVariable("BRAWLERS_ADDR"); err == nil {
		c.Server.Addr = v
	}
	if v, err := GetEnvVariable("BRAWLERS_DB"); err == nil {
		c.SQLite.Path = v
	}
	if v, err := GetEnvVariable("BRAWLERS_ETH_RPC"); err == nil {
		c.ENS.RPCURL = v
	}
	if v, err := GetEnvVariable("BRAWLERS_JWT_SECRET"); err == nil {
		c.Auth.Secret = v
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Sim.TickHz <= 0 || c.Sim.BroadcastHz <= 0 {
		return fmt.Errorf("sim: tick_hz and broadcast_hz must be > 0")
	}
	if c.Sim.TickHz%c.Sim.BroadcastHz != 0 {
		return fmt.Errorf("sim: tick_hz (%d) must be a multiple of broadcast_hz (%d)", c.Sim.TickHz, c.Sim.BroadcastHz)
	}
	if c.Battle.ProgressStep <= 0 || c.Battle.ProgressEvery <= 0 {
		return fmt.Errorf("battle: progress_step and progress_every must be > 0")
	}
	if c.Store.StartingPoints < 0 {
		return fmt.Errorf("store: starting_points must be >= 0")
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil

}
