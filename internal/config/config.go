package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"prosperitybt/types"
)

var ErrUnknownRound = errors.New("unknown round")

// Config is the on-disk configuration shape (YAML). Anything not set in the
// file falls back to the built-in round definitions.
type Config struct {
	DataDir string              `yaml:"data_dir"`
	Rounds  map[int]RoundConfig `yaml:"rounds"`
}

type RoundConfig struct {
	Days     []int                    `yaml:"days"`
	Products map[string]ProductConfig `yaml:"products"`
}

type ProductConfig struct {
	Limit      int  `yaml:"limit"`
	Conversion bool `yaml:"conversion"`
}

// Default returns the built-in rounds: the tutorial plus the five scored
// rounds, with the position limits the exchange enforces.
func Default() *Config {
	limit := func(n int) ProductConfig { return ProductConfig{Limit: n} }

	tutorial := map[string]ProductConfig{
		"RAINFOREST_RESIN": limit(50),
		"KELP":             limit(50),
	}

	round1 := clone(tutorial)
	round1["SQUID_INK"] = limit(50)

	round2 := clone(round1)
	round2["CROISSANTS"] = limit(250)
	round2["JAMS"] = limit(350)
	round2["DJEMBES"] = limit(60)
	round2["PICNIC_BASKET1"] = limit(60)
	round2["PICNIC_BASKET2"] = limit(100)

	round3 := clone(round2)
	round3["VOLCANIC_ROCK"] = limit(400)
	for _, strike := range []string{"9500", "9750", "10000", "10250", "10500"} {
		round3["VOLCANIC_ROCK_VOUCHER_"+strike] = limit(200)
	}

	round4 := clone(round3)
	round4["MAGNIFICENT_MACARONS"] = ProductConfig{Limit: 75, Conversion: true}

	round5 := clone(round4)

	return &Config{
		DataDir: "data",
		Rounds: map[int]RoundConfig{
			0: {Products: tutorial},
			1: {Products: round1},
			2: {Products: round2},
			3: {Products: round3},
			4: {Products: round4},
			5: {Products: round5},
		},
	}
}

// Load reads a YAML config and merges it over the defaults: a round present
// in the file replaces the built-in round wholesale.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	merged := Default()
	if file.DataDir != "" {
		merged.DataDir = file.DataDir
	}
	for round, rc := range file.Rounds {
		merged.Rounds[round] = rc
	}
	return merged, nil
}

// Round returns the config for one round.
func (c *Config) Round(round int) (RoundConfig, error) {
	rc, ok := c.Rounds[round]
	if !ok {
		return RoundConfig{}, fmt.Errorf("round %d: %w", round, ErrUnknownRound)
	}
	return rc, nil
}

// Limits returns the product position limits of a round.
func (rc RoundConfig) Limits() map[types.Product]int {
	limits := make(map[types.Product]int, len(rc.Products))
	for product, pc := range rc.Products {
		limits[product] = pc.Limit
	}
	return limits
}

// ConversionProducts returns the products settled via conversions.
func (rc RoundConfig) ConversionProducts() []types.Product {
	var out []types.Product
	for product, pc := range rc.Products {
		if pc.Conversion {
			out = append(out, product)
		}
	}
	return out
}

func clone(products map[string]ProductConfig) map[string]ProductConfig {
	out := make(map[string]ProductConfig, len(products))
	for product, pc := range products {
		out[product] = pc
	}
	return out
}
