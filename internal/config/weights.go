package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WeightsConfig maps material categories to their share of the composite
// index. Weights must sum to 1.0.
type WeightsConfig struct {
	Categories map[string]float64 `mapstructure:"categories"`
}

func DefaultWeightsConfig() WeightsConfig {
	return WeightsConfig{
		Categories: map[string]float64{
			"steel":      0.25,
			"wood":       0.20,
			"concrete":   0.20,
			"metals":     0.15,
			"energy":     0.12,
			"insulation": 0.08,
		},
	}
}

// WeightsHolder serves the current weights table and hot-reloads it when the
// mounted config file changes.
type WeightsHolder struct {
	current atomic.Value // holds WeightsConfig
}

func NewWeightsHolder() (*WeightsHolder, error) {
	v := viper.New()

	v.SetConfigName("weights")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/baupreis/config")
	v.AddConfigPath("/etc/baupreis")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BAUPREIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultWeightsConfig()
		v.SetDefault("index.categories", defaults.Categories)
	}

	var cfg WeightsConfig
	if err := v.UnmarshalKey("index", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Categories) == 0 {
		cfg = DefaultWeightsConfig()
	}
	if err := validateWeightsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &WeightsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated WeightsConfig
		if err := v.UnmarshalKey("index", &updated); err != nil {
			log.Printf("[weights-config] reload failed: %v", err)
			return
		}
		if err := validateWeightsConfig(updated); err != nil {
			log.Printf("[weights-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[weights-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticWeightsHolder wraps a fixed weights table, used by tests.
func NewStaticWeightsHolder(cfg WeightsConfig) *WeightsHolder {
	holder := &WeightsHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *WeightsHolder) Get() WeightsConfig {
	return h.current.Load().(WeightsConfig)
}

func validateWeightsConfig(cfg WeightsConfig) error {
	if len(cfg.Categories) == 0 {
		return errors.New("index.categories cannot be empty")
	}
	var sum float64
	for category, weight := range cfg.Categories {
		if weight <= 0 {
			return fmt.Errorf("index.categories.%s must be positive", category)
		}
		sum += weight
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("index.categories must sum to 1.0, got %.4f", sum)
	}
	return nil
}
