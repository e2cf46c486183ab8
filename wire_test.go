package cube

import (
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		msg  any
	}{
		{"handshake request", handshakeRequest{Version: protocolVersion}},
		{"handshake response", handshakeResponse{Version: protocolVersion, ServerVersion: "1.3.0"}},
		{"auth request", authRequest{Token: "tok-123", Database: "analytics"}},
		{"auth request empty database", authRequest{Token: "tok-123"}},
		{"auth response ok", authResponse{Success: true, SessionID: "sess-9"}},
		{"auth response rejected", authResponse{Success: false}},
		{"query request", queryRequest{SQL: "SELECT 1"}},
		{"query schema", querySchema{IPC: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}}},
		{"query batch", queryBatch{IPC: []byte{1, 2, 3}}},
		{"query complete", queryComplete{RowsAffected: 42}},
		{"query complete negative", queryComplete{RowsAffected: -1}},
		{"server error", serverError{Code: "SQL_ERROR", Message: "no such table"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := encodeMessage(tc.msg)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			got, err := decodeMessage(payload)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			want := tc.msg
			// Encoding maps nil and empty slices to the same wire form.
			if qb, ok := want.(queryBatch); ok && qb.IPC == nil {
				qb.IPC = []byte{}
				want = qb
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch: got %#v, want %#v", got, want)
			}
		})
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	if _, err := decodeMessage(nil); !isKind(err, ErrProtocol) {
		t.Errorf("expected protocol error, got %v", err)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := decodeMessage([]byte{0x7F}); !isKind(err, ErrProtocol) {
		t.Errorf("expected protocol error, got %v", err)
	}
}

func TestDecodeTruncatedBody(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
	}{
		{"handshake response missing version", []byte{msgHandshakeResponse, 0, 0}},
		{"auth request cut string", []byte{msgAuthRequest, 0, 0, 0, 10, 'a', 'b'}},
		{"query complete short", []byte{msgQueryComplete, 0, 0, 0, 0}},
		{"error missing message", []byte{msgError, 0, 0, 0, 1, 'E'}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeMessage(tc.payload); !isKind(err, ErrProtocol) {
				t.Errorf("expected protocol error, got %v", err)
			}
		})
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	payload, err := encodeMessage(queryRequest{SQL: "SELECT 1"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	payload = append(payload, 0xAA)
	if _, err := decodeMessage(payload); !isKind(err, ErrProtocol) {
		t.Errorf("expected protocol error, got %v", err)
	}
}

// isKind reports whether err is a driver error of the given kind.
func isKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
