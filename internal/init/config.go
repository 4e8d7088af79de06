package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// App mode & server
	Mode        string
	ServerAddr  string
	TLSCertFile string
	TLSKeyFile  string
	LogLevel    string

	// Relational store & uploads
	DBPath           string
	UploadDir        string
	MaxUploadBytes   int64
	CredentialSecret string
	RateLimitPerMin  int

	// Kafka
	KafkaBroker    string
	KafkaTopic     string
	KafkaGroupID   string
	KafkaPartition int
	KafkaReadTO    time.Duration
	KafkaWriteTO   time.Duration

	// Notifications (Cassandra)
	NotificationsEnabled bool
	CassandraHost        string
	CassandraKeyspace    string
	CassandraUsername    string
	CassandraPassword    string
	CassandraTimeout     time.Duration
	CassandraDC          string
	CassandraMigrations  string

	// Worker
	WorkerCount     int
	WorkerQueueSize int
}

var cfg *Config

// Init loads the config using Viper and returns it
func Init() *Config {
	viper.SetDefault("MODE", "server")
	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("DB_PATH", "./tweetfeed.db")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("CREDENTIAL_SECRET", "change-me")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 600)

	// Empty broker disables event publishing
	viper.SetDefault("KAFKA_BROKER", "")
	viper.SetDefault("KAFKA_TOPIC", "tweetfeed-events")
	viper.SetDefault("KAFKA_GROUP_ID", "notification-workers")
	viper.SetDefault("KAFKA_PARTITION", 0)
	viper.SetDefault("KAFKA_READ_TIMEOUT", "10s")
	viper.SetDefault("KAFKA_WRITE_TIMEOUT", "10s")

	viper.SetDefault("NOTIFICATIONS_ENABLED", false)
	viper.SetDefault("CASSANDRA_HOST", "localhost")
	viper.SetDefault("CASSANDRA_KEYSPACE", "tweetfeed")
	viper.SetDefault("CASSANDRA_TIMEOUT", "10s")
	viper.SetDefault("CASSANDRA_MIGRATIONS", "./migrations/cassandra")
	// Optional: Cassandra username/password/DC can be empty

	viper.SetDefault("WORKER_COUNT", 0)
	viper.SetDefault("WORKER_QUEUE_SIZE", 0)

	// Load env variables
	viper.AutomaticEnv()

	// Optional config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	_ = viper.ReadInConfig() // ignore error if no file

	cfg = &Config{
		Mode:                 viper.GetString("MODE"),
		ServerAddr:           viper.GetString("SERVER_ADDR"),
		TLSCertFile:          viper.GetString("TLS_CERT_FILE"),
		TLSKeyFile:           viper.GetString("TLS_KEY_FILE"),
		LogLevel:             viper.GetString("LOG_LEVEL"),
		DBPath:               viper.GetString("DB_PATH"),
		UploadDir:            viper.GetString("UPLOAD_DIR"),
		MaxUploadBytes:       viper.GetInt64("MAX_UPLOAD_BYTES"),
		CredentialSecret:     viper.GetString("CREDENTIAL_SECRET"),
		RateLimitPerMin:      viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		KafkaBroker:          viper.GetString("KAFKA_BROKER"),
		KafkaTopic:           viper.GetString("KAFKA_TOPIC"),
		KafkaGroupID:         viper.GetString("KAFKA_GROUP_ID"),
		KafkaPartition:       viper.GetInt("KAFKA_PARTITION"),
		KafkaReadTO:          parseDuration(viper.GetString("KAFKA_READ_TIMEOUT"), 10*time.Second),
		KafkaWriteTO:         parseDuration(viper.GetString("KAFKA_WRITE_TIMEOUT"), 10*time.Second),
		NotificationsEnabled: viper.GetBool("NOTIFICATIONS_ENABLED"),
		CassandraHost:        viper.GetString("CASSANDRA_HOST"),
		CassandraKeyspace:    viper.GetString("CASSANDRA_KEYSPACE"),
		CassandraUsername:    viper.GetString("CASSANDRA_USERNAME"),
		CassandraPassword:    viper.GetString("CASSANDRA_PASSWORD"),
		CassandraTimeout:     parseDuration(viper.GetString("CASSANDRA_TIMEOUT"), 10*time.Second),
		CassandraDC:          viper.GetString("CASSANDRA_DC"),
		CassandraMigrations:  viper.GetString("CASSANDRA_MIGRATIONS"),
		WorkerCount:          viper.GetInt("WORKER_COUNT"),
		WorkerQueueSize:      viper.GetInt("WORKER_QUEUE_SIZE"),
	}

	return cfg
}

// EventsEnabled reports whether a Kafka broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.KafkaBroker != ""
}

// TLSEnabled reports whether both certificate and key paths are set.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// Get returns the loaded config instance
func Get() *Config {
	return cfg
}
