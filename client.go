package cube

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"
)

// defaultPort is the Cube Arrow Native listener port.
const defaultPort = 4445

// Config holds everything needed to reach a Cube server in native mode.
type Config struct {
	Host     string
	Port     int
	Token    string
	Database string
}

func (c *Config) validate() error {
	if c.Host == "" {
		return newError(ErrInvalidArgument, "host is required")
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Port < 0 || c.Port > 65535 {
		return newError(ErrInvalidArgument, "port %d out of range", c.Port)
	}
	if c.Token == "" {
		return newError(ErrInvalidArgument, "token is required")
	}
	return nil
}

// NativeClient drives one TCP connection through the Arrow Native protocol:
// connect, handshake, authenticate, then any number of strictly serialized
// queries. It is not safe for concurrent use; allocate one client per
// goroutine that needs its own query stream.
type NativeClient struct {
	conn   net.Conn
	reader *bufio.Reader

	serverVersion string
	sessionID     string
	authenticated bool

	// Set after any protocol, io or server error. Every operation except
	// Close then fails with ErrInvalidState.
	broken bool
	closed bool
}

// Connect dials the server and performs the protocol handshake. The context
// deadline, if any, bounds the dial.
func (c *NativeClient) Connect(ctx context.Context, host string, port int) error {
	if c.conn != nil {
		return newError(ErrInvalidState, "already connected")
	}
	if c.closed {
		return newError(ErrInvalidState, "client is closed")
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	slog.Info("connecting", "addr", addr)

	var nc net.Conn
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		nc, err = net.DialTimeout("tcp", addr, time.Until(deadline))
	} else {
		nc, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return wrapError(ErrIo, err, "dial %s failed", addr)
	}

	c.conn = nc
	c.reader = bufio.NewReader(nc)

	if err := c.handshake(); err != nil {
		c.broken = true
		return err
	}
	return nil
}

// connectOn attaches the client to an already-established transport and runs
// the handshake. Used by tests with in-memory pipes.
func (c *NativeClient) connectOn(nc net.Conn) error {
	if c.conn != nil {
		return newError(ErrInvalidState, "already connected")
	}
	c.conn = nc
	c.reader = bufio.NewReader(nc)
	if err := c.handshake(); err != nil {
		c.broken = true
		return err
	}
	return nil
}

func (c *NativeClient) handshake() error {
	if err := c.send(handshakeRequest{Version: protocolVersion}); err != nil {
		return err
	}
	msg, err := c.recv()
	if err != nil {
		return err
	}
	resp, ok := msg.(handshakeResponse)
	if !ok {
		return newError(ErrProtocol, "expected handshake response, got %T", msg)
	}
	if resp.Version != protocolVersion {
		return newError(ErrProtocol, "protocol version mismatch: server %d, client %d",
			resp.Version, protocolVersion)
	}
	c.serverVersion = resp.ServerVersion
	slog.Debug("handshake complete", "server_version", resp.ServerVersion)
	return nil
}

// Authenticate presents the token and optional database to the server and
// records the session it grants.
func (c *NativeClient) Authenticate(token, database string) error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.authenticated {
		return newError(ErrInvalidState, "already authenticated")
	}

	if err := c.send(authRequest{Token: token, Database: database}); err != nil {
		c.broken = true
		return err
	}
	msg, err := c.recv()
	if err != nil {
		c.broken = true
		return err
	}
	resp, ok := msg.(authResponse)
	if !ok {
		c.broken = true
		return newError(ErrProtocol, "expected auth response, got %T", msg)
	}
	if !resp.Success {
		c.broken = true
		return newError(ErrUnauthenticated, "server rejected credentials")
	}
	c.sessionID = resp.SessionID
	c.authenticated = true
	slog.Debug("authenticated", "session_id", resp.SessionID)
	return nil
}

// ExecuteQuery sends one SQL statement and drains the response sequence,
// returning the raw bytes of the batch IPC stream and the server's
// rows-affected count.
//
// The server answers every query with two consecutive Arrow IPC streams: a
// stand-alone schema-only stream, then a self-contained batch stream whose
// first message repeats the same schema. Only the batch stream is kept;
// concatenating both would put two end-of-stream markers in front of the
// reader.
func (c *NativeClient) ExecuteQuery(sql string) ([]byte, int64, error) {
	if err := c.usable(); err != nil {
		return nil, 0, err
	}
	if !c.authenticated {
		return nil, 0, newError(ErrInvalidState, "not authenticated")
	}
	if sql == "" {
		return nil, 0, newError(ErrInvalidArgument, "empty SQL")
	}

	slog.Info("executing query", "sql", sql)
	if err := c.send(queryRequest{SQL: sql}); err != nil {
		c.broken = true
		return nil, 0, err
	}

	var ipc []byte
	for {
		msg, err := c.recv()
		if err != nil {
			c.broken = true
			return nil, 0, err
		}
		switch m := msg.(type) {
		case querySchema:
			// Discarded. The batch stream re-states the schema.
			slog.Debug("discarding schema stream", "bytes", len(m.IPC))
		case queryBatch:
			ipc = append(ipc, m.IPC...)
		case queryComplete:
			slog.Debug("query complete", "rows_affected", m.RowsAffected, "ipc_bytes", len(ipc))
			return ipc, m.RowsAffected, nil
		case serverError:
			c.broken = true
			return nil, 0, &Error{Kind: ErrServer, Msg: m.Message, ServerCode: m.Code}
		default:
			c.broken = true
			return nil, 0, newError(ErrProtocol, "unexpected message %T during query", msg)
		}
	}
}

// Query runs sql and hands the batch stream to an IPC reader, returning it
// as a record stream. This is the one-call path the outer surfaces use.
func (c *NativeClient) Query(sql string) (*RecordStream, int64, error) {
	ipc, rowsAffected, err := c.ExecuteQuery(sql)
	if err != nil {
		return nil, 0, err
	}
	r, err := newIPCReader(ipc)
	if err != nil {
		return nil, 0, err
	}
	return newRecordStream(r), rowsAffected, nil
}

// SessionID returns the identifier granted by the server on authentication.
func (c *NativeClient) SessionID() string { return c.sessionID }

// ServerVersion returns the version string from the handshake.
func (c *NativeClient) ServerVersion() string { return c.serverVersion }

// Close shuts the connection down. It is idempotent and is the only valid
// operation after an error.
func (c *NativeClient) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.authenticated = false
	c.sessionID = ""
	c.broken = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.reader = nil
		if err != nil {
			return wrapError(ErrIo, err, "close failed")
		}
	}
	return nil
}

func (c *NativeClient) usable() error {
	if c.closed {
		return newError(ErrInvalidState, "client is closed")
	}
	if c.conn == nil {
		return newError(ErrInvalidState, "not connected")
	}
	if c.broken {
		return newError(ErrInvalidState, "connection is in a failed state; close it")
	}
	return nil
}

func (c *NativeClient) send(msg any) error {
	payload, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	return writeMessage(c.conn, payload)
}

func (c *NativeClient) recv() (any, error) {
	payload, err := readMessage(c.reader)
	if err != nil {
		return nil, err
	}
	return decodeMessage(payload)
}

// ConnectAndAuth dials, handshakes and authenticates in one call.
func ConnectAndAuth(ctx context.Context, cfg Config) (*NativeClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := &NativeClient{}
	if err := c.Connect(ctx, cfg.Host, cfg.Port); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.Authenticate(cfg.Token, cfg.Database); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
