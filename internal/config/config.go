package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" default:""`
	TokenSecret    string        `envconfig:"TOKEN_SECRET" default:"dev-secret-change-in-production"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	AllowedOrigins string        `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	MaxSceneBytes  int64         `envconfig:"MAX_SCENE_BYTES" default:"33554432"`
	CanvasWidth    int           `envconfig:"CANVAS_WIDTH" default:"1000"`
	CanvasHeight   int           `envconfig:"CANVAS_HEIGHT" default:"1000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
