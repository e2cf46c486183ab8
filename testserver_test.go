package cube

import (
	"bytes"
	"net"
	"strconv"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

func itoa(n int) string { return strconv.Itoa(n) }

// queryResult scripts the server side of one query: the schema-only stream,
// the batch stream (possibly split across several messages), and the final
// completion or error.
type queryResult struct {
	schemaStream []byte
	batchStreams [][]byte
	rowsAffected int64
	errCode      string
	errMsg       string
}

// serverOptions configures the scripted server.
type serverOptions struct {
	handshakeVersion uint32 // defaults to protocolVersion
	serverVersion    string
	authOK           bool
	sessionID        string
	results          map[string]queryResult
}

// serveScript speaks the server side of the native protocol on conn until
// the peer goes away. Responses come from the options; unknown SQL gets an
// in-band error.
func serveScript(t *testing.T, conn net.Conn, opts serverOptions) {
	t.Helper()
	defer conn.Close()

	if opts.handshakeVersion == 0 {
		opts.handshakeVersion = protocolVersion
	}
	if opts.serverVersion == "" {
		opts.serverVersion = "1.3.0-test"
	}
	if opts.sessionID == "" {
		opts.sessionID = "sess-test"
	}

	send := func(msg any) bool {
		payload, err := encodeMessage(msg)
		if err != nil {
			t.Errorf("server encode: %v", err)
			return false
		}
		return writeMessage(conn, payload) == nil
	}
	recv := func() (any, bool) {
		payload, err := readMessage(conn)
		if err != nil {
			return nil, false
		}
		msg, err := decodeMessage(payload)
		if err != nil {
			t.Errorf("server decode: %v", err)
			return nil, false
		}
		return msg, true
	}

	msg, ok := recv()
	if !ok {
		return
	}
	if _, ok := msg.(handshakeRequest); !ok {
		t.Errorf("server: expected handshake, got %T", msg)
		return
	}
	if !send(handshakeResponse{Version: opts.handshakeVersion, ServerVersion: opts.serverVersion}) {
		return
	}

	msg, ok = recv()
	if !ok {
		return
	}
	if _, ok := msg.(authRequest); !ok {
		t.Errorf("server: expected auth, got %T", msg)
		return
	}
	if !send(authResponse{Success: opts.authOK, SessionID: opts.sessionID}) {
		return
	}
	if !opts.authOK {
		return
	}

	for {
		msg, ok := recv()
		if !ok {
			return
		}
		q, ok := msg.(queryRequest)
		if !ok {
			t.Errorf("server: expected query, got %T", msg)
			return
		}
		res, ok := opts.results[q.SQL]
		if !ok {
			res = queryResult{errCode: "SQL_ERROR", errMsg: "unknown relation in " + q.SQL}
		}
		if res.errMsg != "" {
			if !send(serverError{Code: res.errCode, Message: res.errMsg}) {
				return
			}
			continue
		}
		if len(res.schemaStream) > 0 {
			if !send(querySchema{IPC: res.schemaStream}) {
				return
			}
		}
		for _, b := range res.batchStreams {
			if !send(queryBatch{IPC: b}) {
				return
			}
		}
		if !send(queryComplete{RowsAffected: res.rowsAffected}) {
			return
		}
	}
}

// dialScripted wires a NativeClient to an in-memory scripted server and
// runs the handshake.
func dialScripted(t *testing.T, opts serverOptions) *NativeClient {
	t.Helper()
	clientEnd, serverEnd := net.Pipe()
	go serveScript(t, serverEnd, opts)

	c := &NativeClient{}
	t.Cleanup(func() { c.Close() })
	if err := c.connectOn(clientEnd); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	return c
}

// listenScripted runs the scripted server behind a real TCP listener so the
// full dial path can be exercised. Returns host and port.
func listenScripted(t *testing.T, opts serverOptions) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveScript(t, conn, opts)
		}
	}()
	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

// encodeIPCStream serializes records into one Arrow IPC stream, schema
// message first, end-of-stream marker last.
func encodeIPCStream(t *testing.T, schema *arrow.Schema, recs ...arrow.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(memory.NewGoAllocator()))
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			t.Fatalf("ipc write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("ipc close failed: %v", err)
	}
	return buf.Bytes()
}

// schemaOnlyStream is the stand-alone schema stream the server sends ahead
// of the batch stream: a schema message followed directly by EOS.
func schemaOnlyStream(t *testing.T, schema *arrow.Schema) []byte {
	t.Helper()
	return encodeIPCStream(t, schema)
}

// makeRecord builds one record through the regular builder API.
func makeRecord(t *testing.T, schema *arrow.Schema, build func(b *array.RecordBuilder)) arrow.Record {
	t.Helper()
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	build(b)
	return b.NewRecord()
}

// scriptedQuery bundles the two IPC streams the server emits for a result.
func scriptedQuery(t *testing.T, schema *arrow.Schema, recs ...arrow.Record) queryResult {
	t.Helper()
	return queryResult{
		schemaStream: schemaOnlyStream(t, schema),
		batchStreams: [][]byte{encodeIPCStream(t, schema, recs...)},
	}
}
