package observability

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func NewLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if value, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value))); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "devsync-api").Logger()
}
