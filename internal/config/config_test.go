package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"luckyman-server/internal/util"
)

func TestInstance(t *testing.T) {
	clear1 := util.SetEnv("LUCKYMAN_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("LUCKYMAN_JWT_PRIVATE_KEY", "private2.key")
	defer clear2()
	clear3 := util.SetEnv("LUCKYMAN_GAME_MAX_SEATS", "5")
	defer clear3()

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()
	a.Equal(":6000", cfg.Addr)
	a.Equal("postgres", cfg.Database.Driver)
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)
	a.Equal([]string{"https://luckyman.example"}, cfg.CORS.AllowedOrigins)
	a.Equal(8, cfg.Game.HandSize)
	a.Equal(45*time.Second, cfg.Game.TurnTimeout)
	a.Equal(3, cfg.Game.HouseFeePercent)
	a.Equal(5, cfg.Game.MaxSeats)

	// values the file does not set keep their defaults
	a.Equal(10, cfg.Game.BaseBonus)
	a.Equal(1000, cfg.Game.StartingBounty)

	// ensure that it's only loaded once
	_ = os.Setenv("LUCKYMAN_JWT_PRIVATE_KEY", "private3.key")
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestDefaults(t *testing.T) {
	clear1 := util.SetEnv("LUCKYMAN_CONFIG_FILE", "testdata/missing.yaml")
	defer clear1()

	assert.NoError(t, Load())
	cfg := Instance()

	expects := DefaultConfig()
	expects.loaded = true
	assert.Equal(t, expects, cfg)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.Game.TurnTimeout)
}

func TestLoad_badFile(t *testing.T) {
	clear1 := util.SetEnv("LUCKYMAN_CONFIG_FILE", "testdata")
	defer clear1()

	assert.Error(t, Load())
}

