package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"bowling/internal/domain"
)

// Runtime env keys read from the Nakama runtime configuration.
const (
	EnvConfigPath    = "bowling_config_path"
	EnvMaxFrames     = "bowling_max_frames"
	EnvPinsPerFrame  = "bowling_pins_per_frame"
	EnvRollsPerFrame = "bowling_rolls_per_frame"
)

// Match param keys accepted by the match handler and the create_game RPC.
const (
	ParamMaxFrames     = "max_frames"
	ParamPinsPerFrame  = "pins_per_frame"
	ParamRollsPerFrame = "rolls_per_frame"
)

// Upper bounds accepted from files, env and match params.
const (
	MaxFramesLimit     = 100
	PinsPerFrameLimit  = 100
	RollsPerFrameLimit = 10
)

var ErrInvalidConfig = errors.New("invalid game config")

// GameConfig describes the shape of a bowling game.
type GameConfig struct {
	MaxFrames     int `json:"max_frames"`
	PinsPerFrame  int `json:"pins_per_frame"`
	RollsPerFrame int `json:"rolls_per_frame"`
}

// Default returns the standard ten-frame, ten-pin game.
func Default() GameConfig {
	return GameConfig{
		MaxFrames:     domain.DefaultMaxFrames,
		PinsPerFrame:  domain.DefaultPinsPerFrame,
		RollsPerFrame: domain.DefaultRollsPerFrame,
	}
}

// Load reads a JSON game config from path. Fields missing from the file keep their defaults.
func Load(path string) (GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to read game config: %w", err)
	}

	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, c.Validate()
}

// WithEnv overlays the integer values found in the runtime env.
func (c GameConfig) WithEnv(env map[string]string) (GameConfig, error) {
	fields := map[string]*int{
		EnvMaxFrames:     &c.MaxFrames,
		EnvPinsPerFrame:  &c.PinsPerFrame,
		EnvRollsPerFrame: &c.RollsPerFrame,
	}
	for key, dst := range fields {
		val, ok := env[key]
		if !ok {
			continue
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			return c, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, val)
		}
		*dst = i
	}
	return c, nil
}

// WithParams overlays match params. Values may arrive as any integer kind or as
// whole float64 numbers decoded from JSON.
func (c GameConfig) WithParams(params map[string]interface{}) (GameConfig, error) {
	fields := map[string]*int{
		ParamMaxFrames:     &c.MaxFrames,
		ParamPinsPerFrame:  &c.PinsPerFrame,
		ParamRollsPerFrame: &c.RollsPerFrame,
	}
	for key, dst := range fields {
		raw, ok := params[key]
		if !ok {
			continue
		}
		i, ok := toInt(raw)
		if !ok {
			return c, fmt.Errorf("%w: param %s=%v is not an integer", ErrInvalidConfig, key, raw)
		}
		*dst = i
	}
	return c, nil
}

// Params returns the config as match params.
func (c GameConfig) Params() map[string]interface{} {
	return map[string]interface{}{
		ParamMaxFrames:     c.MaxFrames,
		ParamPinsPerFrame:  c.PinsPerFrame,
		ParamRollsPerFrame: c.RollsPerFrame,
	}
}

// Validate rejects values outside 1..limit for each field.
func (c GameConfig) Validate() error {
	if err := checkRange(ParamMaxFrames, c.MaxFrames, MaxFramesLimit); err != nil {
		return err
	}
	if err := checkRange(ParamPinsPerFrame, c.PinsPerFrame, PinsPerFrameLimit); err != nil {
		return err
	}
	return checkRange(ParamRollsPerFrame, c.RollsPerFrame, RollsPerFrameLimit)
}

func checkRange(name string, v, limit int) error {
	if v <= 0 || v > limit {
		return fmt.Errorf("%w: %s must be between 1 and %d, got %d", ErrInvalidConfig, name, limit, v)
	}
	return nil
}

// NewGame builds a scoring engine for this config. Call Validate first.
func (c GameConfig) NewGame() *domain.Game {
	return domain.NewGame(c.MaxFrames, c.PinsPerFrame, c.RollsPerFrame)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n < math.MinInt32 || n > math.MaxInt32 || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
