package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix префикс переменных окружения (STACK_SERVER_REST_PORT и т.п.)
const EnvPrefix = "STACK"

// Config корневая структура конфигурации приложения.
// Порядок приоритета: переменные окружения -> YAML файл -> значения по умолчанию.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Game      GameConfig      `yaml:"game" envconfig:"GAME"`
	HighScore HighScoreConfig `yaml:"highscore" envconfig:"HIGHSCORE"`
	EventBus  EventBusConfig  `yaml:"eventbus" envconfig:"EVENTBUS"`
	Replay    ReplayConfig    `yaml:"replay" envconfig:"REPLAY"`
	Auth      AuthConfig      `yaml:"auth" envconfig:"AUTH"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Audio     AudioConfig     `yaml:"audio" envconfig:"AUDIO"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port" envconfig:"REST_PORT"`
}

type GameConfig struct {
	FrameRate      int `yaml:"frame_rate" envconfig:"FRAME_RATE"`             // Кадров в секунду у клиента
	MaxSessions    int `yaml:"max_sessions" envconfig:"MAX_SESSIONS"`         // Ограничение одновременных партий
	MaxTickBatch   int `yaml:"max_tick_batch" envconfig:"MAX_TICK_BATCH"`     // Максимум кадров за один запрос tick
	IdleTimeoutSec int `yaml:"idle_timeout_sec" envconfig:"IDLE_TIMEOUT_SEC"` // Через сколько секунд простоя партия удаляется
}

// HighScoreConfig выбирает хранилище рекорда.
// Backend: memory | badger | redis | mysql | postgres | mongo
type HighScoreConfig struct {
	Backend     string `yaml:"backend" envconfig:"BACKEND"`
	Key         string `yaml:"key" envconfig:"KEY"`
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR"`
	RedisAddr   string `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	MySQLDSN    string `yaml:"mysql_dsn" envconfig:"MYSQL_DSN"`
	PostgresDSN string `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	MongoURI    string `yaml:"mongo_uri" envconfig:"MONGO_URI"`
	MongoDB     string `yaml:"mongo_db" envconfig:"MONGO_DB"`
}

type EventBusConfig struct {
	URL       string `yaml:"url" envconfig:"URL"` // Пусто: in-memory шина
	Stream    string `yaml:"stream" envconfig:"STREAM"`
	Retention int    `yaml:"retention_hours" envconfig:"RETENTION_HOURS"`
	Capacity  int    `yaml:"capacity" envconfig:"CAPACITY"`
}

type ReplayConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
}

type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`                   // base64, минимум 32 байта
	AdminPasswordHash string `yaml:"admin_password_hash" envconfig:"ADMIN_PASSWORD_HASH"` // bcrypt
	TokenTTLHours     int    `yaml:"token_ttl_hours" envconfig:"TOKEN_TTL_HOURS"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled" envconfig:"ENABLED"`
	SampleRate int     `yaml:"sample_rate" envconfig:"SAMPLE_RATE"`
	Volume     float64 `yaml:"volume" envconfig:"VOLUME"` // 0.0 - 1.0
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
	Dir   string `yaml:"dir" envconfig:"DIR"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{RESTPort: 8088},
		Game: GameConfig{
			FrameRate:      60,
			MaxSessions:    1024,
			MaxTickBatch:   600,
			IdleTimeoutSec: 900,
		},
		HighScore: HighScoreConfig{
			Backend: "badger",
			Key:     "StackHighestScore",
			DataDir: "data",
			MongoDB: "arstack",
		},
		EventBus: EventBusConfig{
			Stream:    "STACK",
			Retention: 24,
			Capacity:  1024,
		},
		Replay: ReplayConfig{
			Enabled: true,
			DataDir: "data",
		},
		Auth: AuthConfig{TokenTTLHours: 24},
		Telemetry: TelemetryConfig{
			ServiceName: "arstack",
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.6,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load читает YAML файл конфигурации и накладывает переменные окружения.
// Если path == "", пытается прочитать путь из ENV STACK_CONFIG; без файла
// используются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	switch c.HighScore.Backend {
	case "memory", "badger", "redis", "mysql", "postgres", "mongo":
	default:
		return fmt.Errorf("неизвестное хранилище рекорда: %q", c.HighScore.Backend)
	}
	if c.Server.RESTPort <= 0 || c.Server.RESTPort > 65535 {
		return fmt.Errorf("недопустимый порт REST: %d", c.Server.RESTPort)
	}
	if c.Game.FrameRate <= 0 {
		return fmt.Errorf("частота кадров должна быть положительной: %d", c.Game.FrameRate)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("громкость вне диапазона 0..1: %v", c.Audio.Volume)
	}
	return nil
}

// RESTAddr возвращает адрес для http.Server
func (s ServerConfig) RESTAddr() string {
	return fmt.Sprintf(":%d", s.RESTPort)
}
