// Package server exposes the AP RO verification decoders over TCP.
package server

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	anetserver "github.com/andrei-cloud/anet/server"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/internal/logging"
	"github.com/andrei-cloud/go_arv/internal/provision"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// logAdapter implements anet.Logger using zerolog.
type logAdapter struct{}

func (l logAdapter) Print(v ...any) {
	log.Info().Msg(fmt.Sprint(v...))
}

func (l logAdapter) Printf(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Infof(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Warnf(format string, v ...any) {
	log.Warn().Msgf(format, v...)
}

func (l logAdapter) Errorf(format string, v ...any) {
	log.Error().Msgf(format, v...)
}

// Server wraps the anet TCP server and the command handlers.
type Server struct {
	address     string
	srv         *anetserver.Server
	handlers    map[string]handlerFunc
	descriptors atomic.Pointer[[3]arv.WriteProtectDescriptor]
	activeConns int32
}

// NewServer configures and returns the server. When policy is not nil, WP
// requests may omit the NVRAM image and are checked against it instead.
func NewServer(address string, policy *provision.Policy) (*Server, error) {
	cfg := &anetserver.ServerConfig{
		MaxConns:        100,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     0 * time.Second, // disable idle connection closure.
		ShutdownTimeout: 5 * time.Second,
		Logger:          logAdapter{},
	}

	s := &Server{address: address}
	s.SetPolicy(policy)
	s.handlers = map[string]handlerFunc{
		"EX": s.explainWord,
		"TS": s.tpmStatus,
		"WP": s.checkWriteProtect,
	}

	srv, err := anetserver.NewServer(address, anetserver.HandlerFunc(s.handle), cfg)
	if err != nil {
		return nil, fmt.Errorf("server setup failed: %w", err)
	}
	s.srv = srv

	return s, nil
}

// Start begins listening for connections.
func (s *Server) Start() error {
	log.Info().Str("address", s.address).Msg("server started")
	return s.srv.Start()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	return s.srv.Stop()
}

// SetPolicy swaps the policy used for WP requests without an NVRAM image.
// A nil policy makes such requests fail.
func (s *Server) SetPolicy(policy *provision.Policy) {
	if policy == nil {
		s.descriptors.Store(nil)
		return
	}
	descs := policy.Descriptors()
	s.descriptors.Store(&descs)
}

// formatData returns ascii string if all bytes are printable, else hex string.
func formatData(data []byte) string {
	for _, b := range data {
		if b < 32 || b > 126 {
			return hex.EncodeToString(data)
		}
	}
	return string(data)
}

// incrementCode returns the response code by incrementing the second character.
func incrementCode(cmd string) string {
	b := []byte(cmd)
	if len(b) < 2 {
		return cmd
	}
	if b[1] == 'Z' {
		b[1] = 'A'
	} else {
		b[1]++
	}

	return string(b)
}

// toolCode picks the wire error code for a handler error.
func toolCode(err error) errorcodes.ToolError {
	var te errorcodes.ToolError
	if errors.As(err, &te) {
		return te
	}

	return errorcodes.ErrMalformedRequest
}

func (s *Server) handle(conn *anetserver.ServerConn, data []byte) ([]byte, error) {
	client := conn.Conn.RemoteAddr().String()
	active := int(atomic.AddInt32(&s.activeConns, 1))
	defer atomic.AddInt32(&s.activeConns, -1)

	start := time.Now()
	requestID := uuid.NewString()

	if len(data) < 2 {
		log.Error().
			Str("request_id", requestID).
			Str("client_ip", client).
			Msg("malformed request")
		return nil, errors.New("malformed request")
	}

	cmd := string(data[:2])
	respCmd := incrementCode(cmd)
	logging.LogRequest(requestID, client, cmd, formatData(data), active)

	code := errorcodes.Err00
	var body []byte
	h, ok := s.handlers[cmd]
	if !ok {
		code = errorcodes.ErrUnknownCommand
		log.Warn().
			Str("event", "unknown_command").
			Str("request_id", requestID).
			Str("client_ip", client).
			Str("command", cmd).
			Msg("command not recognized, responding with error code")
	} else if out, err := h(data[2:]); err != nil {
		code = toolCode(err)
		log.Error().
			Str("event", "command_error").
			Str("request_id", requestID).
			Str("client_ip", client).
			Str("command", cmd).
			Err(err).
			Msg("command failed")
	} else {
		body = out
	}

	resp := make([]byte, 0, 4+len(body))
	resp = append(resp, respCmd...)
	resp = append(resp, code.CodeOnly()...)
	resp = append(resp, body...)

	logging.LogResponse(requestID, client, cmd, respCmd, code.CodeOnly(), int(atomic.LoadInt32(&s.activeConns)))
	log.Debug().
		Str("event", "handle_done").
		Str("request_id", requestID).
		Str("response", formatData(resp)).
		Str("duration", time.Since(start).String()).
		Msg("completed request handling")

	return resp, nil
}
