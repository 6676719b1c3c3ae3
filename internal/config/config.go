package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trainvoc-room-service/internal/app"
	natsbus "trainvoc-room-service/internal/infra/nats"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		ReadTimeout    string   `yaml:"readTimeout"`
		WriteTimeout   string   `yaml:"writeTimeout"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		// AnswerRate is the sustained answer submissions per second allowed per player.
		AnswerRate  float64 `yaml:"answerRate"`
		AnswerBurst int     `yaml:"answerBurst"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Words struct {
		TTL string `yaml:"ttl"`
	} `yaml:"words"`
	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subjectPrefix"`
	} `yaml:"nats"`
	Game struct {
		Countdown             string `yaml:"countdown"`
		Reveal                string `yaml:"reveal"`
		Ranking               string `yaml:"ranking"`
		MaxPlayers            int    `yaml:"maxPlayers"`
		MinPlayers            int    `yaml:"minPlayers"`
		AllowLateJoin         bool   `yaml:"allowLateJoin"`
		PreserveScoreOnRejoin *bool  `yaml:"preserveScoreOnRejoin"`
		EmptyRoomGrace        string `yaml:"emptyRoomGrace"`
		FinishedRoomGrace     string `yaml:"finishedRoomGrace"`
		TickInterval          string `yaml:"tickInterval"`
		CodeAttempts          int    `yaml:"codeAttempts"`
		EventBuffer           int    `yaml:"eventBuffer"`
		Seed                  int64  `yaml:"seed"`
	} `yaml:"game"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Settings builds the room service settings, keeping defaults for anything unset.
func (c Config) Settings() app.Settings {
	s := app.DefaultSettings()
	g := c.Game
	s.Timings.Countdown = TTLDuration(g.Countdown, s.Timings.Countdown)
	s.Timings.Reveal = TTLDuration(g.Reveal, s.Timings.Reveal)
	s.Timings.Ranking = TTLDuration(g.Ranking, s.Timings.Ranking)
	if g.MaxPlayers > 0 {
		s.Policy.MaxPlayers = g.MaxPlayers
	}
	if g.MinPlayers > 0 {
		s.Policy.MinPlayers = g.MinPlayers
	}
	s.Policy.AllowLateJoin = g.AllowLateJoin
	if g.PreserveScoreOnRejoin != nil {
		s.Policy.PreserveScoreOnRejoin = *g.PreserveScoreOnRejoin
	}
	s.EmptyRoomGrace = TTLDuration(g.EmptyRoomGrace, s.EmptyRoomGrace)
	s.FinishedRoomGrace = TTLDuration(g.FinishedRoomGrace, s.FinishedRoomGrace)
	s.TickInterval = TTLDuration(g.TickInterval, s.TickInterval)
	if g.CodeAttempts > 0 {
		s.CodeAttempts = g.CodeAttempts
	}
	if g.EventBuffer > 0 {
		s.EventBuffer = g.EventBuffer
	}
	s.Seed = g.Seed
	return s
}

// NATSConfig returns the publisher config; the URL stays empty when NATS is disabled.
func (c Config) NATSConfig() natsbus.Config {
	n := natsbus.DefaultConfig()
	n.URL = c.NATS.URL
	if c.NATS.SubjectPrefix != "" {
		n.SubjectPrefix = c.NATS.SubjectPrefix
	}
	return n
}
