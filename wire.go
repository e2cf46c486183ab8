package cube

import (
	"encoding/binary"
)

// Message type bytes of the Arrow Native protocol. The type byte is the
// first byte of each frame payload.
const (
	msgHandshakeRequest  byte = 0x01
	msgHandshakeResponse byte = 0x02
	msgAuthRequest       byte = 0x03
	msgAuthResponse      byte = 0x04
	msgQueryRequest      byte = 0x05
	msgQuerySchema       byte = 0x06
	msgQueryBatch        byte = 0x07
	msgQueryComplete     byte = 0x08
	msgError             byte = 0xFF
)

// protocolVersion is the fixed handshake version shared by client and
// server. A server answering with any other version is incompatible.
const protocolVersion uint32 = 1

type handshakeRequest struct {
	Version uint32
}

type handshakeResponse struct {
	Version       uint32
	ServerVersion string
}

type authRequest struct {
	Token    string
	Database string
}

type authResponse struct {
	Success   bool
	SessionID string
}

type queryRequest struct {
	SQL string
}

type querySchema struct {
	IPC []byte
}

type queryBatch struct {
	IPC []byte
}

type queryComplete struct {
	RowsAffected int64
}

type serverError struct {
	Code    string
	Message string
}

// wireBuilder appends big-endian primitives to a payload.
type wireBuilder struct {
	buf []byte
}

func (b *wireBuilder) u8(v byte)  { b.buf = append(b.buf, v) }
func (b *wireBuilder) u32(v uint32) {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
}
func (b *wireBuilder) i64(v int64) {
	b.buf = binary.BigEndian.AppendUint64(b.buf, uint64(v))
}
func (b *wireBuilder) bytes(v []byte) {
	b.u32(uint32(len(v)))
	b.buf = append(b.buf, v...)
}
func (b *wireBuilder) str(v string) { b.bytes([]byte(v)) }

// wireParser consumes big-endian primitives from a payload.
type wireParser struct {
	buf []byte
}

func (p *wireParser) u8() (byte, error) {
	if len(p.buf) < 1 {
		return 0, newError(ErrProtocol, "message body truncated")
	}
	v := p.buf[0]
	p.buf = p.buf[1:]
	return v, nil
}

func (p *wireParser) u32() (uint32, error) {
	if len(p.buf) < 4 {
		return 0, newError(ErrProtocol, "message body truncated")
	}
	v := binary.BigEndian.Uint32(p.buf)
	p.buf = p.buf[4:]
	return v, nil
}

func (p *wireParser) i64() (int64, error) {
	if len(p.buf) < 8 {
		return 0, newError(ErrProtocol, "message body truncated")
	}
	v := int64(binary.BigEndian.Uint64(p.buf))
	p.buf = p.buf[8:]
	return v, nil
}

func (p *wireParser) bytes() ([]byte, error) {
	n, err := p.u32()
	if err != nil {
		return nil, err
	}
	if uint32(len(p.buf)) < n {
		return nil, newError(ErrProtocol, "message body truncated")
	}
	v := p.buf[:n]
	p.buf = p.buf[n:]
	return v, nil
}

func (p *wireParser) str() (string, error) {
	v, err := p.bytes()
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (p *wireParser) done() error {
	if len(p.buf) != 0 {
		return newError(ErrProtocol, "%d trailing bytes in message body", len(p.buf))
	}
	return nil
}

// encodeMessage serializes one protocol message into a frame payload
// (type byte + body). It never performs I/O.
func encodeMessage(msg any) ([]byte, error) {
	var b wireBuilder
	switch m := msg.(type) {
	case handshakeRequest:
		b.u8(msgHandshakeRequest)
		b.u32(m.Version)
	case handshakeResponse:
		b.u8(msgHandshakeResponse)
		b.u32(m.Version)
		b.str(m.ServerVersion)
	case authRequest:
		b.u8(msgAuthRequest)
		b.str(m.Token)
		b.str(m.Database)
	case authResponse:
		b.u8(msgAuthResponse)
		if m.Success {
			b.u8(1)
		} else {
			b.u8(0)
		}
		b.str(m.SessionID)
	case queryRequest:
		b.u8(msgQueryRequest)
		b.str(m.SQL)
	case querySchema:
		b.u8(msgQuerySchema)
		b.bytes(m.IPC)
	case queryBatch:
		b.u8(msgQueryBatch)
		b.bytes(m.IPC)
	case queryComplete:
		b.u8(msgQueryComplete)
		b.i64(m.RowsAffected)
	case serverError:
		b.u8(msgError)
		b.str(m.Code)
		b.str(m.Message)
	default:
		return nil, newError(ErrProtocol, "cannot encode message type %T", msg)
	}
	return b.buf, nil
}

// decodeMessage parses a frame payload into its typed message. The whole
// body must be consumed; trailing bytes are a protocol violation.
func decodeMessage(payload []byte) (any, error) {
	if len(payload) == 0 {
		return nil, newError(ErrProtocol, "empty message payload")
	}
	p := wireParser{buf: payload[1:]}
	var msg any
	var err error
	switch payload[0] {
	case msgHandshakeRequest:
		var m handshakeRequest
		m.Version, err = p.u32()
		msg = m
	case msgHandshakeResponse:
		var m handshakeResponse
		if m.Version, err = p.u32(); err == nil {
			m.ServerVersion, err = p.str()
		}
		msg = m
	case msgAuthRequest:
		var m authRequest
		if m.Token, err = p.str(); err == nil {
			m.Database, err = p.str()
		}
		msg = m
	case msgAuthResponse:
		var m authResponse
		var ok byte
		if ok, err = p.u8(); err == nil {
			m.Success = ok != 0
			m.SessionID, err = p.str()
		}
		msg = m
	case msgQueryRequest:
		var m queryRequest
		m.SQL, err = p.str()
		msg = m
	case msgQuerySchema:
		var m querySchema
		m.IPC, err = p.bytes()
		msg = m
	case msgQueryBatch:
		var m queryBatch
		m.IPC, err = p.bytes()
		msg = m
	case msgQueryComplete:
		var m queryComplete
		m.RowsAffected, err = p.i64()
		msg = m
	case msgError:
		var m serverError
		if m.Code, err = p.str(); err == nil {
			m.Message, err = p.str()
		}
		msg = m
	default:
		return nil, newError(ErrProtocol, "unknown message type 0x%02X", payload[0])
	}
	if err != nil {
		return nil, err
	}
	if err := p.done(); err != nil {
		return nil, err
	}
	return msg, nil
}
