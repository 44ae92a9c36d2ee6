package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"luckyman-server/internal/util"
)

// Config provides configuration for the Lucky Man server
type Config struct {
	loaded   bool
	Addr     string `yaml:"addr" envconfig:"addr"`
	Database struct {
		Driver         string `yaml:"driver" envconfig:"driver"`
		DSN            string `yaml:"dsn" envconfig:"dsn"`
		MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	} `yaml:"database"`
	JWT struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	} `yaml:"jwt"`
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"allowed_origins"`
	} `yaml:"cors"`
	Game struct {
		HandSize        int           `yaml:"handSize" envconfig:"hand_size"`
		TurnTimeout     time.Duration `yaml:"turnTimeout" envconfig:"turn_timeout"`
		BaseBonus       int           `yaml:"baseBonus" envconfig:"base_bonus"`
		Multiplier      int           `yaml:"multiplier" envconfig:"multiplier"`
		HouseFeePercent int           `yaml:"houseFeePercent" envconfig:"house_fee_percent"`
		MaxSeats        int           `yaml:"maxSeats" envconfig:"max_seats"`
		StartingBounty  int           `yaml:"startingBounty" envconfig:"starting_bounty"`
		StoreTimeout    time.Duration `yaml:"storeTimeout" envconfig:"store_timeout"`
	} `yaml:"game"`
}

var (
	mu     sync.Mutex
	config Config
)

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	var cfg Config
	cfg.Addr = ":5000"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "luckyman.db"
	cfg.JWT.PublicKey = "public.pem"
	cfg.JWT.PrivateKey = "private.key"
	cfg.Log.Level = "info"
	cfg.Game.HandSize = 10
	cfg.Game.TurnTimeout = 30 * time.Second
	cfg.Game.BaseBonus = 10
	cfg.Game.Multiplier = 1
	cfg.Game.HouseFeePercent = 5
	cfg.Game.MaxSeats = 4
	cfg.Game.StartingBounty = 1000
	cfg.Game.StoreTimeout = 5 * time.Second

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	mu.Lock()
	loaded := config.loaded
	mu.Unlock()

	if !loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	return config
}

// Load will load the configuration
// Defaults are overridden by the YAML file, which is overridden by the environment. A missing file is not an error.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("LUCKYMAN_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if file != nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	}

	if err := envconfig.Process("luckyman", &cfg); err != nil {
		return err
	}

	cfg.loaded = true

	mu.Lock()
	config = cfg
	mu.Unlock()
	return nil
}
