package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath переменная окружения с путём к конфигу
const EnvConfigPath = "HORDE_CONFIG"

// Config корневая структура конфигурации приложения
type Config struct {
	Server     ServerConfig            `yaml:"server"`
	Simulation SimulationConfig        `yaml:"simulation"`
	Player     PlayerConfig            `yaml:"player"`
	Enemy      EnemyConfig             `yaml:"enemy"`
	Waves      WaveConfig              `yaml:"waves"`
	Weapons    map[string]WeaponConfig `yaml:"weapons"`
	Storage    StorageConfig           `yaml:"storage"`
	EventBus   EventBusConfig          `yaml:"eventbus"`
	Auth       AuthConfig              `yaml:"auth"`
	Telemetry  TelemetryConfig         `yaml:"telemetry"`
	Logging    LoggingConfig           `yaml:"logging"`
}

type ServerConfig struct {
	RESTPort         int           `yaml:"rest_port"`
	MetricsPort      int           `yaml:"metrics_port"`
	StreamInterval   time.Duration `yaml:"stream_interval"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	ServerMetricsTTL time.Duration `yaml:"server_metrics_interval"`
}

type SimulationConfig struct {
	FPS          int     `yaml:"fps"`
	MaxDeltaTime float64 `yaml:"max_delta_time"`
	Seed         int64   `yaml:"seed"`
	Players      int     `yaml:"players"`
	PlayerSpread float64 `yaml:"player_spread"`
	ScreenWidth  int     `yaml:"screen_width"`
	ScreenHeight int     `yaml:"screen_height"`
}

type PlayerConfig struct {
	Speed          float64 `yaml:"speed"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	Health         int     `yaml:"health"`
	HitShape       string  `yaml:"hit_shape"`
	StartingWeapon string  `yaml:"starting_weapon"`
	WeaponCount    int     `yaml:"weapon_count"`
}

type EnemyConfig struct {
	Speed            float64 `yaml:"speed"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Health           int     `yaml:"health"`
	Melee            bool    `yaml:"melee"`
	MeleeDamage      int     `yaml:"melee_damage"`
	MeleeAttackSpeed float64 `yaml:"melee_attack_speed"`
	RotationSpeed    float64 `yaml:"rotation_speed"`
}

type WaveConfig struct {
	BaseEnemies    int     `yaml:"base_enemies"`
	EnemiesPerWave int     `yaml:"enemies_per_wave"`
	Interval       float64 `yaml:"interval"`
	FirstDelay     float64 `yaml:"first_delay"`
	RestartDelay   float64 `yaml:"restart_delay"`
}

// WeaponConfig описывает оружие. Range = 0 означает бесконечную дальность.
type WeaponConfig struct {
	Kind             string  `yaml:"kind"`
	Damage           int     `yaml:"damage"`
	Range            float64 `yaml:"range"`
	AttackDuration   float64 `yaml:"attack_duration"`
	CooldownDuration float64 `yaml:"cooldown_duration"`
	PiercingCount    int     `yaml:"piercing_count"`
	MaxTargets       int     `yaml:"max_targets"`
	Offset           float64 `yaml:"offset"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	ProjectileSpeed  float64 `yaml:"projectile_speed"`
}

type StorageConfig struct {
	Backend        string `yaml:"backend"` // memory | badger | redis
	BadgerPath     string `yaml:"badger_path"`
	Compress       bool   `yaml:"compress"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	LeaderboardKey string `yaml:"leaderboard_key"`

	// Кеш таблицы лидеров: memory | redis | off
	CacheBackend string        `yaml:"cache_backend"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Issuer    string        `yaml:"issuer"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string            `yaml:"console_level"`
	FileLevel    string            `yaml:"file_level"`
	Components   map[string]string `yaml:"components"` // Порог по компоненту, например api: warn
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			StreamInterval:   100 * time.Millisecond,
			ShutdownTimeout:  5 * time.Second,
			ServerMetricsTTL: 15 * time.Second,
		},
		Simulation: SimulationConfig{
			FPS:          60,
			MaxDeltaTime: 0.05,
			Seed:         1,
			Players:      1,
			PlayerSpread: 60,
			ScreenWidth:  1280,
			ScreenHeight: 720,
		},
		Player: PlayerConfig{
			Speed:          300,
			Width:          42,
			Height:         75,
			Health:         100,
			HitShape:       "rect",
			StartingWeapon: "dagger",
			WeaponCount:    2,
		},
		Enemy: EnemyConfig{
			Speed:            150,
			Width:            20,
			Height:           20,
			Health:           30,
			Melee:            true,
			MeleeDamage:      1,
			MeleeAttackSpeed: 1.0,
			RotationSpeed:    1.5,
		},
		Waves: WaveConfig{
			BaseEnemies:    3,
			EnemiesPerWave: 2,
			Interval:       4,
			FirstDelay:     1,
			RestartDelay:   2,
		},
		Weapons: map[string]WeaponConfig{
			"dagger": {
				Kind:             "melee",
				Damage:           20,
				Range:            300,
				AttackDuration:   0.2,
				CooldownDuration: 1.0,
				PiercingCount:    0,
				MaxTargets:       1,
				Offset:           30,
				Width:            20,
				Height:           10,
			},
		},
		Storage: StorageConfig{
			Backend:        "memory",
			BadgerPath:     "data/runs",
			Compress:       true,
			RedisAddr:      "localhost:6379",
			LeaderboardKey: "horde:leaderboard",
			CacheBackend:   "memory",
			CacheTTL:       5 * time.Second,
		},
		EventBus: EventBusConfig{
			Stream:    "HORDE_EVENTS",
			Retention: 24,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
			Issuer:   "horde-arena",
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "horde-arena",
			Insecure:    true,
		},
		Logging: LoggingConfig{
			Dir:          "logs",
			ConsoleLevel: "info",
			FileLevel:    "debug",
		},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "HORDE_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "HORDE_METRICS_PORT", 2112)
}

// GetJWTSecret возвращает секрет: config -> env HORDE_JWT_SECRET
func (a *AuthConfig) GetJWTSecret() string {
	if a.JWTSecret != "" {
		return a.JWTSecret
	}
	return os.Getenv("HORDE_JWT_SECRET")
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берётся путь из HORDE_CONFIG; без него возвращаются дефолты.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфига %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("конфиг %s: %w", path, err)
	}
	return cfg, nil
}

// Parse разбирает YAML поверх значений по умолчанию и проверяет результат
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Simulation.FPS > 0, "simulation.fps должен быть > 0")
	check(c.Simulation.MaxDeltaTime > 0, "simulation.max_delta_time должен быть > 0")
	check(c.Simulation.Players > 0, "simulation.players должен быть > 0")
	check(c.Simulation.ScreenWidth > 0 && c.Simulation.ScreenHeight > 0, "размер экрана должен быть положительным")

	check(c.Player.Speed >= 0, "player.speed не может быть отрицательной")
	check(c.Player.Width > 0 && c.Player.Height > 0, "размер игрока должен быть положительным")
	check(c.Player.Health > 0, "player.health должен быть > 0")
	check(c.Player.HitShape == "rect" || c.Player.HitShape == "ellipse", "player.hit_shape: неизвестная форма %q", c.Player.HitShape)
	check(c.Player.WeaponCount >= 0, "player.weapon_count не может быть отрицательным")
	if c.Player.WeaponCount > 0 {
		_, ok := c.Weapons[c.Player.StartingWeapon]
		check(ok, "player.starting_weapon: оружие %q не описано в weapons", c.Player.StartingWeapon)
	}

	check(c.Enemy.Width > 0 && c.Enemy.Height > 0, "размер врага должен быть положительным")
	check(c.Enemy.Health > 0, "enemy.health должен быть > 0")
	check(c.Enemy.MeleeAttackSpeed > 0, "enemy.melee_attack_speed должен быть > 0")
	check(c.Enemy.RotationSpeed >= 0, "enemy.rotation_speed не может быть отрицательной")

	check(c.Waves.BaseEnemies >= 0 && c.Waves.EnemiesPerWave >= 0, "размер волны не может быть отрицательным")
	check(c.Waves.Interval > 0, "waves.interval должен быть > 0")

	for name, w := range c.Weapons {
		check(w.Kind == "melee" || w.Kind == "ranged", "weapons.%s.kind: неизвестный тип %q", name, w.Kind)
		check(w.Range >= 0, "weapons.%s.range не может быть отрицательной", name)
		check(w.AttackDuration > 0, "weapons.%s.attack_duration должен быть > 0", name)
		check(w.CooldownDuration >= 0, "weapons.%s.cooldown_duration не может быть отрицательной", name)
		check(w.PiercingCount >= 0, "weapons.%s.piercing_count не может быть отрицательным", name)
		check(w.MaxTargets >= 1, "weapons.%s.max_targets должен быть >= 1", name)
	}

	switch c.Storage.Backend {
	case "memory", "badger", "redis":
	default:
		errs = append(errs, fmt.Errorf("storage.backend: неизвестный бэкенд %q", c.Storage.Backend))
	}
	switch c.Storage.CacheBackend {
	case "", "off", "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("storage.cache_backend: неизвестный кеш %q", c.Storage.CacheBackend))
	}
	check(c.Storage.CacheTTL >= 0, "storage.cache_ttl не может быть отрицательным")

	return errors.Join(errs...)
}
