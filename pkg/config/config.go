package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port       string         `mapstructure:"port"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
	Message    MessageConfig  `mapstructure:"message"`
}

// Book definition book_service YAML structure
type Book struct {
	Port       string          `mapstructure:"port"`
	PostgreSQL DatabaseConfig  `mapstructure:"pg"`
	MongoSQL   DatabaseConfig  `mapstructure:"mongo"`
	Redis      RedisConfig     `mapstructure:"redis"`
	RabbitMQ   RabbitMQConfig  `mapstructure:"rabbitmq"`
	Geocoding  GeocodingConfig `mapstructure:"geocoding"`
	Metadata   MetadataConfig  `mapstructure:"metadata"`
	Search     SearchConfig    `mapstructure:"search"`
}

// MessageConfig message paging setting
type MessageConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// RedisConfig definition redis setting.
// Addr is used for a single node, otherwise the sentinel setting from .env applies.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	RedisDB  int           `mapstructure:"redis_db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition avatar bucket setting
type MinIOConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	BucketName    string        `mapstructure:"bucket_name"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignTTL    time.Duration `mapstructure:"presign_ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryCount    int           `mapstructure:"retry_count"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	IP            string        `mapstructure:"ip"`
	Port          string        `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	QueueName     string        `mapstructure:"queue_name"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryCount    int           `mapstructure:"retry_count"`
}

// GeocodingConfig definition the mapping provider
type GeocodingConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Debounce    time.Duration `mapstructure:"debounce"`
	MinChars    int           `mapstructure:"min_chars"`
	Country     string        `mapstructure:"country"`
	FallbackLat float64       `mapstructure:"fallback_lat"`
	FallbackLng float64       `mapstructure:"fallback_lng"`
}

// MetadataConfig definition the public book metadata API
type MetadataConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SearchConfig definition nearby search limits
type SearchConfig struct {
	MaxResults int `mapstructure:"max_results"`
}
