package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `{
  "mongo": {
    "uri": "mongodb://localhost:27017",
    "database": "workplace_connect",
    "messagesCollection": "messages",
    "usersCollection": "users",
    "groupsCollection": "groups"
  },
  "server": {
    "app_port": 8080,
    "socket_port": 8081,
    "socket_route": "ws",
    "allowed_origins": ["http://localhost:4200"]
  },
  "auth": {
    "jwt_secret": "file-secret"
  },
  "redis": {
    "addr": "",
    "presence_ttl_seconds": 120
  }
}`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeSampleConfig(t))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.ChatDatabase.Database != "workplace_connect" {
		t.Errorf("database = %q, want %q", config.ChatDatabase.Database, "workplace_connect")
	}
	if config.Server.SocketPort != 8081 {
		t.Errorf("socket port = %d, want 8081", config.Server.SocketPort)
	}
	if config.Auth.JwtSecret != "file-secret" {
		t.Errorf("jwt secret = %q, want the file value", config.Auth.JwtSecret)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SOCKET_PORT", "9090")

	config, err := LoadConfig(writeSampleConfig(t))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Auth.JwtSecret != "env-secret" {
		t.Errorf("jwt secret = %q, want the environment value", config.Auth.JwtSecret)
	}
	if config.Server.SocketPort != 9090 {
		t.Errorf("socket port = %d, want the environment value 9090", config.Server.SocketPort)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadConfig() succeeded for a missing file")
	}
}
