package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalid — конфигурация содержит недопустимые значения
var ErrInvalid = errors.New("invalid config")

// Config корневая структура конфигурации ядра физики.
type Config struct {
	Physics PhysicsConfig `yaml:"physics"`
	Sim     SimConfig     `yaml:"sim"`
	Stress  StressConfig  `yaml:"stress"`
	Logging LoggingConfig `yaml:"logging"`
}

// PhysicsConfig — константы интегратора. Подобраны под масштаб "один трайл = одна
// единица" и должны сохраняться точно ради паритета геймплея.
type PhysicsConfig struct {
	GroundFriction      float64 `yaml:"ground_friction"`
	AirFriction         float64 `yaml:"air_friction"`
	SlidingFriction     float64 `yaml:"sliding_friction"`
	WaterFriction       float64 `yaml:"water_friction"`
	GravityPerTick      float64 `yaml:"gravity_per_tick"`
	MaxVerticalSpeed    float64 `yaml:"max_vertical_speed"`
	MaxGroundCarry      float64 `yaml:"max_ground_carry"`
	NearZeroEpsilon     float64 `yaml:"near_zero_epsilon"`
	HuggingDistance     float64 `yaml:"hugging_distance"`
	GroundCheckDistance float64 `yaml:"ground_check_distance"`
	MaxHugIterations    int     `yaml:"max_hug_iterations"`
}

// SimConfig — параметры цикла симуляции
type SimConfig struct {
	TickRate      int  `yaml:"tick_rate"`
	RotationTicks int  `yaml:"rotation_ticks"`
	DeferResample bool `yaml:"defer_resample"`
}

// StressConfig — параметры утилиты physics-stress
type StressConfig struct {
	Seed        int64 `yaml:"seed"`
	Width       int   `yaml:"width"`
	Height      int   `yaml:"height"`
	Depth       int   `yaml:"depth"`
	Actors      int   `yaml:"actors"`
	Ticks       int   `yaml:"ticks"`
	RotateEvery int   `yaml:"rotate_every"`
	MetricsPort int   `yaml:"metrics_port"`
}

// LoggingConfig — уровни логирования
type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Physics: PhysicsConfig{
			GroundFriction:      0.85,
			AirFriction:         0.9975,
			SlidingFriction:     0.8,
			WaterFriction:       0.925,
			GravityPerTick:      0.007875,
			MaxVerticalSpeed:    0.4,
			MaxGroundCarry:      0.5,
			NearZeroEpsilon:     0.001,
			HuggingDistance:     0.002,
			GroundCheckDistance: 1.0 / 32,
			MaxHugIterations:    16,
		},
		Sim: SimConfig{
			TickRate:      60,
			RotationTicks: 24,
			DeferResample: true,
		},
		Stress: StressConfig{
			Seed:        12345,
			Width:       48,
			Height:      24,
			Depth:       48,
			Actors:      64,
			Ticks:       3600,
			RotateEvery: 120,
		},
		Logging: LoggingConfig{
			ConsoleLevel: "INFO",
			FileLevel:    "DEBUG",
		},
	}
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	p := c.Physics
	frictions := map[string]float64{
		"ground_friction":  p.GroundFriction,
		"air_friction":     p.AirFriction,
		"sliding_friction": p.SlidingFriction,
		"water_friction":   p.WaterFriction,
	}
	for name, f := range frictions {
		if f <= 0 || f > 1 {
			return fmt.Errorf("physics.%s = %v, expected (0, 1]: %w", name, f, ErrInvalid)
		}
	}
	if p.MaxVerticalSpeed <= 0 {
		return fmt.Errorf("physics.max_vertical_speed must be positive: %w", ErrInvalid)
	}
	if p.MaxHugIterations <= 0 {
		return fmt.Errorf("physics.max_hug_iterations must be positive: %w", ErrInvalid)
	}
	if p.HuggingDistance < 0 || p.NearZeroEpsilon < 0 || p.GroundCheckDistance <= 0 {
		return fmt.Errorf("physics distances must be non-negative: %w", ErrInvalid)
	}
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive: %w", ErrInvalid)
	}
	if c.Sim.RotationTicks < 0 {
		return fmt.Errorf("sim.rotation_ticks must be non-negative: %w", ErrInvalid)
	}
	return nil
}

// GetTickRate возвращает частоту тиков с поддержкой fallback значений
func (s *SimConfig) GetTickRate() int {
	return getIntWithEnvFallback(s.TickRate, "TRILE_TICK_RATE", 60)
}

// GetMetricsPort возвращает порт Prometheus метрик; 0 — эндпоинт выключен
func (s *StressConfig) GetMetricsPort() int {
	return getIntWithEnvFallback(s.MetricsPort, "TRILE_METRICS_PORT", 0)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultValue
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV TRILE_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("TRILE_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
