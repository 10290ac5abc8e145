package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/internal/conf"
	"sigs.k8s.io/yaml"
)

// Config - Settings read from the YAML config file, fields left out keep their defaults
//   - HashBits is the number of bits in a hash code
//   - MaxTransferBytes is the largest chunk moved in one bulk transfer
//   - PollInterval is the interval between idle checks while waiting for a step
//   - StepTimeout is the time a step may take before the run is abandoned
//   - LogLevel is one of debug, info, warn and error
type Config struct {
	HashBits         int64  `json:"hashBits"`
	MaxTransferBytes int64  `json:"maxTransferBytes"`
	PollInterval     string `json:"pollInterval"`
	StepTimeout      string `json:"stepTimeout"`
	LogLevel         string `json:"logLevel"`

	pollInterval time.Duration
	stepTimeout  time.Duration
}

// defaultConfig - Returns a Config with all defaults applied
func defaultConfig() Config {
	return Config{
		HashBits:         conf.DefaultHashBits,
		MaxTransferBytes: conf.DefaultMaxTransferBytes,
		PollInterval:     "1ms",
		StepTimeout:      "1m",
		LogLevel:         "info",
		pollInterval:     time.Millisecond,
		stepTimeout:      time.Minute,
	}
}

// LoadConfig - Returns the defaults overridden by whatever is set in the given YAML file, an empty file name
// gives the defaults
func LoadConfig(fileName string) (config Config, err error) {
	config = defaultConfig()
	if fileName == "" {
		return
	}

	raw, err := os.ReadFile(fileName)
	if err != nil {
		err = errors.Wrapf(err, "unable to read config file")
		return
	}

	err = ParseConfig(raw, &config)

	return
}

// ParseConfig - Unmarshals YAML into config and validates the result
func ParseConfig(raw []byte, config *Config) (err error) {
	err = yaml.Unmarshal(raw, config)
	if err != nil {
		err = errors.Wrapf(err, "unable to parse config")
		return
	}

	if config.HashBits < 1 || config.HashBits > conf.MaxHashBits {
		err = fmt.Errorf("hashBits must be within [1, %d]", conf.MaxHashBits)
		return
	}
	if config.MaxTransferBytes <= 0 || config.MaxTransferBytes%conf.RecordWidth != 0 {
		err = fmt.Errorf("maxTransferBytes must be a positive multiple of %d", conf.RecordWidth)
		return
	}

	config.pollInterval, err = time.ParseDuration(config.PollInterval)
	if err != nil {
		err = errors.Wrapf(err, "pollInterval")
		return
	}
	config.stepTimeout, err = time.ParseDuration(config.StepTimeout)
	if err != nil {
		err = errors.Wrapf(err, "stepTimeout")
		return
	}
	if config.pollInterval <= 0 || config.stepTimeout <= 0 {
		err = fmt.Errorf("pollInterval and stepTimeout must be positive")
		return
	}

	return
}
