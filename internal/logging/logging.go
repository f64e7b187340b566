// Package logging configures the global zerolog logger for go_arv.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the zerolog logger with the specified debug mode and output format.
func InitLogger(debug, human bool) {
	InitLoggerTo(os.Stderr, debug, human)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer, debug, human bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano            // always initialize base logger with timestamp.
	base := zerolog.New(w).With().Timestamp().Logger() // initialize base logger.
	if human {
		log.Logger = base.Output(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339Nano,
		}) // select output format.
	} else {
		log.Logger = base // use JSON logger.
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel) // set debug level.
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel) // set info level.
	}
}

// InitFromStrings normalizes level/format strings as found in config and flags.
func InitFromStrings(level, format string) {
	level = strings.TrimSpace(strings.ToLower(level))
	format = strings.TrimSpace(strings.ToLower(format))
	InitLogger(level == "debug", format != "json")
}

// LogRequest logs a received command with structured fields.
func LogRequest(
	requestID string,
	clientIP string,
	command string,
	payload string,
	activeConns int,
) {
	log.Info().
		Str("event", "request_received").
		Str("request_id", requestID).
		Str("client_ip", clientIP).
		Str("command", command).
		Str("request", payload).
		Int("active_connections", activeConns).
		Msg("received command")
}

// LogResponse logs a sent response with structured fields.
func LogResponse(
	requestID string,
	clientIP string,
	command string,
	responseCommand string,
	errorCode string,
	activeConns int,
) {
	log.Info().
		Str("event", "response_sent").
		Str("request_id", requestID).
		Str("client_ip", clientIP).
		Str("command", command).
		Str("response_command", responseCommand).
		Str("error_code", errorCode).
		Int("active_connections", activeConns).
		Msg("sent response")
}
