package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                   string `json:"uri"`
	Database              string `json:"database"`
	ConnectionsCollection string `json:"connectionsCollection"`
	MessagesCollection    string `json:"messagesCollection"`
	UsersCollection       string `json:"usersCollection"`
	PostsCollection       string `json:"postsCollection"`
	GroupsCollection      string `json:"groupsCollection"`
	ActivitiesCollection  string `json:"activitiesCollection"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	SocketPort     int      `json:"socket_port"`
	SocketRoute    string   `json:"socket_route"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type LogConfig struct {
	Development bool `json:"development"`
}

// Duration accepts "5s" style strings in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type PollConfig struct {
	InboxInterval  Duration `json:"inbox_interval"`
	ThreadInterval Duration `json:"thread_interval"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
	Log          LogConfig    `json:"log"`
	Poll         PollConfig   `json:"poll"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	return Config{
		ChatDatabase: MongoConfig{
			Database:              "campus_skilllink",
			ConnectionsCollection: "connections",
			MessagesCollection:    "messages",
			UsersCollection:       "users",
			PostsCollection:       "posts",
			GroupsCollection:      "study_groups",
			ActivitiesCollection:  "activities",
		},
		Server: ServerConfig{
			AppPort:        8080,
			SocketPort:     8081,
			SocketRoute:    "ws",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Poll: PollConfig{
			InboxInterval:  Duration{5 * time.Second},
			ThreadInterval: Duration{3 * time.Second},
		},
	}
}

// LoadConfig reads the JSON file on top of the defaults, then applies .env and
// environment overrides. A missing file is allowed when the environment supplies the URI.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	if err := applyEnv(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyEnv(config *Config) error {
	if v := os.Getenv("MONGODB_URI"); v != "" {
		config.ChatDatabase.Uri = v
	}
	if v := os.Getenv("MONGODB_DB"); v != "" {
		config.ChatDatabase.Database = v
	}
	for name, target := range map[string]*int{
		"APP_PORT":    &config.Server.AppPort,
		"SOCKET_PORT": &config.Server.SocketPort,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = port
	}
	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.ChatDatabase.Uri == "":
		return errors.New("missing MongoDB uri (set mongo.uri or MONGODB_URI)")
	case c.ChatDatabase.Database == "":
		return errors.New("missing MongoDB database name")
	case c.Poll.InboxInterval.Duration <= 0 || c.Poll.ThreadInterval.Duration <= 0:
		return errors.New("poll intervals must be positive")
	case c.Server.AppPort <= 0 || c.Server.SocketPort <= 0:
		return errors.New("server ports must be positive")
	}
	return nil
}
