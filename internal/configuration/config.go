package configuration

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                string `json:"uri"`
	Database           string `json:"database"`
	MessagesCollection string `json:"messagesCollection"`
	UsersCollection    string `json:"usersCollection"`
	GroupsCollection   string `json:"groupsCollection"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	SocketPort     int      `json:"socket_port"`
	SocketRoute    string   `json:"socket_route"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type AuthConfig struct {
	JwtSecret string `json:"jwt_secret"`
}

type RedisConfig struct {
	Addr               string `json:"addr"`
	Password           string `json:"password"`
	DB                 int    `json:"db"`
	PresenceTTLSeconds int    `json:"presence_ttl_seconds"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
	Auth         AuthConfig   `json:"auth"`
	Redis        RedisConfig  `json:"redis"`
}

// LoadConfig reads the JSON config file, then lets the environment override
// the values that should not live in a checked-in file. A .env file is
// loaded first if present.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)

	return &config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Auth.JwtSecret = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		config.ChatDatabase.Uri = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.AppPort = port
		}
	}
	if v := os.Getenv("SOCKET_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.SocketPort = port
		}
	}
}
