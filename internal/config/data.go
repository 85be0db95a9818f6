package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Data data config struct
type Data struct {
	// Driver selects the job store: mongodb or memory.
	Driver         string
	MongoDB        *MongoDB
	Redis          *Redis
	RabbitMQ       *RabbitMQ
	QueryTimeout   time.Duration
	ConnectTimeout time.Duration
}

// MongoDB mongodb config struct
type MongoDB struct {
	URI      string
	Database string
}

// Redis redis config struct
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQ rabbitmq config struct
type RabbitMQ struct {
	URL      string
	Exchange string
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		Driver: getStringOrDefault(v, "data.driver", DriverMongoDB),
		MongoDB: &MongoDB{
			URI:      getStringOrDefault(v, "data.mongodb.uri", "mongodb://localhost:27017"),
			Database: getStringOrDefault(v, "data.mongodb.database", "skillconnect"),
		},
		Redis: &Redis{
			Addr:     v.GetString("data.redis.addr"),
			Password: v.GetString("data.redis.password"),
			DB:       v.GetInt("data.redis.db"),
		},
		RabbitMQ: &RabbitMQ{
			URL:      v.GetString("data.rabbitmq.url"),
			Exchange: getStringOrDefault(v, "data.rabbitmq.exchange", "jobcore.events"),
		},
		QueryTimeout:   getDurationOrDefault(v, "data.query_timeout", 5*time.Second),
		ConnectTimeout: getDurationOrDefault(v, "data.connect_timeout", 10*time.Second),
	}
}
