package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInit_Defaults(t *testing.T) {
	viper.Reset()

	c := Init()
	assert.Equal(t, "server", c.Mode)
	assert.Equal(t, ":8080", c.ServerAddr)
	assert.Equal(t, "./tweetfeed.db", c.DBPath)
	assert.Equal(t, int64(10<<20), c.MaxUploadBytes)
	assert.Equal(t, 10*time.Second, c.KafkaWriteTO)
	assert.False(t, c.EventsEnabled())
	assert.False(t, c.TLSEnabled())
	assert.False(t, c.NotificationsEnabled)
	assert.Same(t, c, Get())
}

func TestInit_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("MODE", "worker")
	t.Setenv("KAFKA_BROKER", "kafka:9092")
	t.Setenv("KAFKA_READ_TIMEOUT", "3s")
	t.Setenv("CASSANDRA_TIMEOUT", "not-a-duration")
	t.Setenv("NOTIFICATIONS_ENABLED", "true")
	t.Setenv("WORKER_COUNT", "4")

	c := Init()
	assert.Equal(t, "worker", c.Mode)
	assert.True(t, c.EventsEnabled())
	assert.Equal(t, 3*time.Second, c.KafkaReadTO)
	assert.Equal(t, 10*time.Second, c.CassandraTimeout)
	assert.True(t, c.NotificationsEnabled)
	assert.Equal(t, 4, c.WorkerCount)
}
