package config

import (
	"os"
	"strconv"

	"github.com/opd-ai/socketpdu/limits"
	"github.com/sirupsen/logrus"
)

// Environment variable names read by ApplyEnvironmentOverrides.
const (
	EnvMode    = "SOCKETPDU_MODE"
	EnvAddress = "SOCKETPDU_ADDRESS"
	EnvPort    = "SOCKETPDU_PORT"
	EnvMTU     = "SOCKETPDU_MTU"
	EnvNoDelay = "SOCKETPDU_NO_DELAY"
)

// ApplyEnvironmentOverrides updates cfg from SOCKETPDU_* environment variables.
// Values that fail to parse are logged and leave the field unchanged.
func ApplyEnvironmentOverrides(cfg *Config) {
	parseModeSetting(cfg)
	if address, ok := os.LookupEnv(EnvAddress); ok {
		cfg.Address = address
	}
	if port := os.Getenv(EnvPort); port != "" {
		cfg.Port = port
	}
	parseMTUSetting(cfg)
	parseNoDelaySetting(cfg)
	logConfigurationInfo(cfg)
}

// parseModeSetting updates Mode from SOCKETPDU_MODE.
func parseModeSetting(cfg *Config) {
	modeStr := os.Getenv(EnvMode)
	if modeStr == "" {
		return
	}
	mode, err := ParseMode(modeStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseModeSetting",
			"env_var":     EnvMode,
			"value":       modeStr,
			"error":       err.Error(),
			"using_value": cfg.Mode.String(),
		}).Warn("Failed to parse SOCKETPDU_MODE environment variable, using default")
		return
	}
	cfg.Mode = mode
}

// parseMTUSetting updates MTU from SOCKETPDU_MTU. It validates the value is
// within [limits.MinTransferUnit, limits.MaxTransferUnit].
func parseMTUSetting(cfg *Config) {
	mtuStr := os.Getenv(EnvMTU)
	if mtuStr == "" {
		return
	}
	mtu, err := strconv.Atoi(mtuStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseMTUSetting",
			"env_var":     EnvMTU,
			"value":       mtuStr,
			"error":       err.Error(),
			"using_value": cfg.MTU,
		}).Warn("Failed to parse SOCKETPDU_MTU environment variable, using default")
		return
	}
	if err := limits.ValidateTransferUnit(mtu); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseMTUSetting",
			"env_var":     EnvMTU,
			"value":       mtu,
			"min":         limits.MinTransferUnit,
			"max":         limits.MaxTransferUnit,
			"using_value": cfg.MTU,
		}).Warn("SOCKETPDU_MTU value out of bounds, using default")
		return
	}
	cfg.MTU = mtu
}

// parseNoDelaySetting updates NoDelay from SOCKETPDU_NO_DELAY.
func parseNoDelaySetting(cfg *Config) {
	noDelayStr := os.Getenv(EnvNoDelay)
	if noDelayStr == "" {
		return
	}
	noDelay, err := strconv.ParseBool(noDelayStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseNoDelaySetting",
			"env_var":     EnvNoDelay,
			"value":       noDelayStr,
			"error":       err.Error(),
			"using_value": cfg.NoDelay,
		}).Warn("Failed to parse SOCKETPDU_NO_DELAY environment variable, using default")
		return
	}
	cfg.NoDelay = noDelay
}

func logConfigurationInfo(cfg *Config) {
	logrus.WithFields(logrus.Fields{
		"function": "ApplyEnvironmentOverrides",
		"mode":     cfg.Mode.String(),
		"address":  cfg.Address,
		"port":     cfg.Port,
		"mtu":      cfg.MTU,
		"no_delay": cfg.NoDelay,
	}).Debug("Resolved bridge configuration")
}
