package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func isDevelopment(appEnv string) bool {
	env := strings.ToLower(appEnv)
	return env == "development" || env == "dev"
}

// Init initializes the global zerolog logger and routes the standard library
// logger through it.
func Init(logLevelStr string, appEnv string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil || logLevelStr == "" {
		parsedLevel = zerolog.InfoLevel
		log.Warn().Err(err).Msgf("Invalid log level '%s', defaulting to 'info'", logLevelStr)
	}
	zerolog.SetGlobalLevel(parsedLevel)

	var output io.Writer = os.Stdout
	ctx := zerolog.New(output).With().Timestamp()
	if isDevelopment(appEnv) {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		ctx = zerolog.New(output).With().Timestamp().Caller()
	}

	log.Logger = ctx.Str("service", "scs-storefront-auth").Logger()

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}
