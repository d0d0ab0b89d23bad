package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Identity       string        `env:"CHAT_IDENTITY,required=true" validate:"required,max=64"`
	BindAddr       string        `env:"CHAT_BIND_ADDR,default=127.0.0.1:7878" validate:"required,hostname_port"`
	PeerAddr       string        `env:"CHAT_PEER_ADDR,required=true" validate:"required,hostname_port"`
	Codec          string        `env:"CHAT_CODEC,default=cbor" validate:"oneof=cbor protowire"`
	CommandTimeout time.Duration `env:"CHAT_COMMAND_TIMEOUT,default=10ms" validate:"gt=0"`
	ReadTimeout    time.Duration `env:"CHAT_READ_TIMEOUT,default=10ms" validate:"gt=0"`
	BufferSize     int           `env:"CHAT_BUFFER_SIZE,default=64" validate:"gte=0"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
	LogFile        string        `env:"LOG_FILE,default=chatapp.log" validate:"required"`
}

// LoadConfig reads an optional .env file from the working directory, then the
// environment, and validates the result.
// Variables already set in the environment win over the .env file.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return Config{}, fmt.Errorf("env file: %w", err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := ParseLogLevel(config.LogLevel); err != nil {
		return Config{}, err
	}
	return config, nil
}

// ParseLogLevel accepts the slog level names, case-insensitively.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", level, err)
	}
	return l, nil
}
