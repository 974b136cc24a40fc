package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultMaxLength  = 5000
	DefaultBulkMaxIDs = 500
)

type DBConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

// DSN returns a postgres connection string usable by both pgx and golang-migrate.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.Username, c.Password, c.Host, c.Port, c.DBName, sslMode)
}

type ServerConfig struct {
	Port           string
	Handler        http.Handler
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	ConnString string
}

// CommentsConfig holds the comment policy that deployments may tune.
type CommentsConfig struct {
	// AutoApprove publishes new comments immediately. When false they start as pending.
	AutoApprove bool
	// BulkStrict fails a whole bulk action when any id is unknown.
	BulkStrict bool
	MaxLength  int
	BulkMaxIDs int
	Blacklist  []string
}

type Config struct {
	AppPort      string
	ClientOrigin string
	AccessSecret string
	DB           DBConfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	Comments     CommentsConfig
}

// LoadEnv reads the .env file. A missing file is not an error so the service
// can run with variables coming from the environment.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// InitViper reads app.yaml from the working directory.
func InitViper() error {
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetConfigName("app")
	setDefaults()
	return viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("comments.auto_approve", true)
	viper.SetDefault("comments.bulk_strict", false)
	viper.SetDefault("comments.max_length", DefaultMaxLength)
	viper.SetDefault("comments.bulk_max_ids", DefaultBulkMaxIDs)
	viper.SetDefault("comments.blacklist", []string{"spam", "offensive_word_1", "offensive_word_2"})
}

// Load builds Config from the already initialized viper instance and the environment.
func Load() Config {
	return Config{
		AppPort:      viper.GetString("app.port"),
		ClientOrigin: viper.GetString("client.origin"),
		AccessSecret: os.Getenv("ACCESS_SECRET"),
		DB: DBConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			DBName:   os.Getenv("POSTGRES_DATABASE"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("redis.db"),
		},
		RabbitMQ: RabbitMQConfig{
			ConnString: os.Getenv("RABBITMQ_CONN_STRING"),
		},
		Comments: LoadComments(),
	}
}

func LoadComments() CommentsConfig {
	cfg := CommentsConfig{
		AutoApprove: viper.GetBool("comments.auto_approve"),
		BulkStrict:  viper.GetBool("comments.bulk_strict"),
		MaxLength:   viper.GetInt("comments.max_length"),
		BulkMaxIDs:  viper.GetInt("comments.bulk_max_ids"),
	}
	for _, term := range viper.GetStringSlice("comments.blacklist") {
		if term = strings.TrimSpace(term); term != "" {
			cfg.Blacklist = append(cfg.Blacklist, term)
		}
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxLength
	}
	if cfg.BulkMaxIDs <= 0 {
		cfg.BulkMaxIDs = DefaultBulkMaxIDs
	}
	return cfg
}
