package server

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/internal/explain"
	"github.com/andrei-cloud/go_arv/internal/provision"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// handlerFunc processes a request payload and returns the response body.
// Returning an errorcodes.ToolError selects the wire error code.
type handlerFunc func(payload []byte) ([]byte, error)

// decodeHex decodes exactly n bytes of hex.
func decodeHex(payload []byte, n int) ([]byte, error) {
	if len(payload) != 2*n {
		return nil, fmt.Errorf("%w: want %d hex digits, got %d", errorcodes.ErrMalformedRequest, 2*n, len(payload))
	}
	b := make([]byte, n)
	if _, err := hex.Decode(b, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", errorcodes.ErrInvalidArg, err)
	}

	return b, nil
}

// explainWord handles EX: 8 hex digits in, explanation text out.
func (s *Server) explainWord(payload []byte) ([]byte, error) {
	b, err := decodeHex(payload, 4)
	if err != nil {
		return nil, err
	}
	e := explain.Explain(binary.BigEndian.Uint32(b))
	if e.Kind == explain.KindUnrecognized {
		return nil, errorcodes.ErrUnrecognizedStatus
	}

	return []byte(e.String()), nil
}

// tpmStatus handles TS: one status byte in, "<name> (<short>)" out.
func (s *Server) tpmStatus(payload []byte) ([]byte, error) {
	b, err := decodeHex(payload, 1)
	if err != nil {
		return nil, err
	}
	st, ok := arv.TpmvStatusFromUint8(b[0])
	if !ok {
		return nil, fmt.Errorf("%w: %d", errorcodes.ErrUnrecognizedStatus, b[0])
	}

	return []byte(fmt.Sprintf("%s (%s)", st.Name(), st.String())), nil
}

// checkWriteProtect handles WP: an NVRAM image followed by the three observed
// status register bytes, all hex. The image may be left out when the server
// was started with a policy. The body is the result word as 8 hex digits.
func (s *Server) checkWriteProtect(payload []byte) ([]byte, error) {
	var descs [3]arv.WriteProtectDescriptor
	var observedHex []byte
	switch {
	case len(payload) == 2*(provision.ImageSize+3):
		img, err := decodeHex(payload[:2*provision.ImageSize], provision.ImageSize)
		if err != nil {
			return nil, err
		}
		if descs, err = provision.ParseImage(img); err != nil {
			return nil, err
		}
		observedHex = payload[2*provision.ImageSize:]
	case len(payload) == 6:
		policy := s.descriptors.Load()
		if policy == nil {
			return nil, fmt.Errorf("%w: no policy loaded for a WP payload without an image", errorcodes.ErrInvalidNVRAM)
		}
		descs = *policy
		observedHex = payload
	default:
		return nil, fmt.Errorf("%w: WP payload of %d characters", errorcodes.ErrInvalidNVRAM, len(payload))
	}

	obs, err := decodeHex(observedHex, 3)
	if err != nil {
		return nil, err
	}
	res := provision.CheckRegisters(descs, [3]byte{obs[0], obs[1], obs[2]})

	return []byte(fmt.Sprintf("%08X", res.Uint32())), nil
}
