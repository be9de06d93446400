// Package config loads service settings from configs/config.yml, with BREW_*
// environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"brewing_control/internal/control"
)

const (
	DriverSim   = "sim"
	DriverRedis = "redis"
)

type Config struct {
	Port            string        `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Rig       RigConfig       `mapstructure:"rig"`
	Regulator RegulatorConfig `mapstructure:"regulator"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NTP       NTPConfig       `mapstructure:"ntp"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// RigConfig maps the bank to driver pins: heaters in zone order, then the
// fluid-path actuators.
type RigConfig struct {
	Driver       string        `mapstructure:"driver"`
	HeaterPins   []int         `mapstructure:"heater_pins"`
	ActuatorPins []int         `mapstructure:"actuator_pins"`
	PulseWidth   time.Duration `mapstructure:"pulse_width"`
}

type RegulatorConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	HeatingBuffer  float64       `mapstructure:"heating_buffer"`
	CoolingBuffer  float64       `mapstructure:"cooling_buffer"`
	FaultThreshold int           `mapstructure:"sensor_fault_threshold"`
}

type ProcessorConfig struct {
	Tick      time.Duration `mapstructure:"tick"`
	QueueSize int           `mapstructure:"queue_size"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type NTPConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Server    string        `mapstructure:"server"`
	Interval  time.Duration `mapstructure:"interval"`
	Threshold time.Duration `mapstructure:"threshold"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("db.path", "brew.db")

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("rig.driver", DriverSim)
	v.SetDefault("rig.heater_pins", []int{17, 27})
	v.SetDefault("rig.actuator_pins", []int{22, 23})
	v.SetDefault("rig.pulse_width", control.DefaultPulseWidth)

	v.SetDefault("regulator.interval", time.Second)
	v.SetDefault("regulator.heating_buffer", 1.0)
	v.SetDefault("regulator.cooling_buffer", 1.0)
	v.SetDefault("regulator.sensor_fault_threshold", 3)

	v.SetDefault("processor.tick", 500*time.Millisecond)
	v.SetDefault("processor.queue_size", 16)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "")

	v.SetDefault("ntp.enabled", false)
	v.SetDefault("ntp.server", "pool.ntp.org")
	v.SetDefault("ntp.interval", 5*time.Minute)
	v.SetDefault("ntp.threshold", 2*time.Second)
}

// Load reads the config file at path, or configs/config.yml when path is
// empty. A missing default file is not an error; defaults and environment
// still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BREW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		errs = append(errs, errors.New("auth.signing_key: required; set it in the config file or BREW_AUTH_SIGNING_KEY"))
	}
	if len(c.Rig.HeaterPins) == 0 {
		errs = append(errs, errors.New("rig.heater_pins: at least one zone is required"))
	}
	switch c.Rig.Driver {
	case DriverSim, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("rig.driver: unknown driver %q", c.Rig.Driver))
	}
	if c.Rig.PulseWidth < 0 {
		errs = append(errs, errors.New("rig.pulse_width: must not be negative"))
	}
	if c.Regulator.Interval <= 0 {
		errs = append(errs, errors.New("regulator.interval: must be positive"))
	}
	if c.Regulator.HeatingBuffer < 0 || c.Regulator.CoolingBuffer < 0 {
		errs = append(errs, errors.New("regulator: buffers must not be negative"))
	}
	if c.Regulator.FaultThreshold < 1 {
		errs = append(errs, errors.New("regulator.sensor_fault_threshold: must be at least 1"))
	}
	if c.Processor.Tick <= 0 {
		errs = append(errs, errors.New("processor.tick: must be positive"))
	}
	if c.Processor.QueueSize < 1 {
		errs = append(errs, errors.New("processor.queue_size: must be at least 1"))
	}
	if c.NTP.Enabled && c.NTP.Server == "" {
		errs = append(errs, errors.New("ntp.server: required when ntp is enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Layout is the rig shape recipes are validated against.
func (c *Config) Layout() control.Layout {
	return control.Layout{Zones: len(c.Rig.HeaterPins), Actuators: len(c.Rig.ActuatorPins)}
}

// Engine converts the settings into the control engine's configuration.
func (c *Config) Engine() control.Config {
	return control.Config{
		HeaterPins:   append([]int(nil), c.Rig.HeaterPins...),
		ActuatorPins: append([]int(nil), c.Rig.ActuatorPins...),
		PulseWidth:   c.Rig.PulseWidth,
		Regulator: control.RegulatorConfig{
			Interval:       c.Regulator.Interval,
			HeatingBuffer:  c.Regulator.HeatingBuffer,
			CoolingBuffer:  c.Regulator.CoolingBuffer,
			FaultThreshold: c.Regulator.FaultThreshold,
		},
		Processor: control.ProcessorConfig{
			Tick:      c.Processor.Tick,
			QueueSize: c.Processor.QueueSize,
		},
		ShutdownTimeout: c.ShutdownTimeout,
	}
}
