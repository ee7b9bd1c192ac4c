// Package config merges the flag, environment, and file configuration
// surface the orchestrator consumes at startup. The hot-path core never
// reads configuration; it takes sized values at construction.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mevcore/constants"
)

// Config holds the runtime settings for the ingestion node.
type Config struct {
	QueueCapacity  int
	ResultBlocks   int
	TxBlocks       int
	CalldataBlocks int
	JournalPath    string
	MetricsListen  string
	LogLevel       string
}

// Load merges config file, MEVCORE_* environment variables, and flags.
// Flags win over the file, the file wins over defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEVCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("queue-capacity", constants.DefaultQueueCapacity)
	v.SetDefault("result-blocks", constants.ResultBlockCount)
	v.SetDefault("tx-blocks", constants.TxBlockCount)
	v.SetDefault("calldata-blocks", constants.CalldataBlockCount)
	v.SetDefault("journal", "")
	v.SetDefault("metrics-listen", "")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		QueueCapacity:  v.GetInt("queue-capacity"),
		ResultBlocks:   v.GetInt("result-blocks"),
		TxBlocks:       v.GetInt("tx-blocks"),
		CalldataBlocks: v.GetInt("calldata-blocks"),
		JournalPath:    v.GetString("journal"),
		MetricsListen:  v.GetString("metrics-listen"),
		LogLevel:       v.GetString("log-level"),
	}
	if cfg.QueueCapacity <= 0 {
		return Config{}, fmt.Errorf("queue-capacity must be positive, got %d", cfg.QueueCapacity)
	}
	if cfg.ResultBlocks <= 0 || cfg.TxBlocks <= 0 || cfg.CalldataBlocks <= 0 {
		return Config{}, fmt.Errorf("pool block counts must be positive")
	}
	return cfg, nil
}
