package cube

import (
	"context"
	"strconv"
	"sync"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// ADBC option keys understood by the database object.
const (
	OptionHost           = "host"
	OptionPort           = "port"
	OptionToken          = "token"
	OptionDatabase       = "database"
	OptionConnectionMode = "connection_mode"
)

// connectionModeNative is the only mode this driver implements; other modes
// of the Cube server (e.g. the PostgreSQL wire protocol) belong to other
// drivers.
const connectionModeNative = "native"

// ADBCDriver exposes the native client through the ADBC driver interface.
type ADBCDriver struct{}

var _ adbc.Driver = ADBCDriver{}

func (ADBCDriver) NewDatabase(opts map[string]string) (adbc.Database, error) {
	return ADBCDriver{}.NewDatabaseWithContext(context.Background(), opts)
}

func (ADBCDriver) NewDatabaseWithContext(_ context.Context, opts map[string]string) (adbc.Database, error) {
	db := &adbcDatabase{}
	if err := db.SetOptions(opts); err != nil {
		return nil, err
	}
	return db, nil
}

type adbcDatabase struct {
	cfg Config
}

var _ adbc.Database = (*adbcDatabase)(nil)

func (d *adbcDatabase) SetOptions(opts map[string]string) error {
	for k, v := range opts {
		switch k {
		case OptionHost:
			d.cfg.Host = v
		case OptionPort:
			port, err := strconv.Atoi(v)
			if err != nil {
				return toADBC(newError(ErrInvalidArgument, "invalid port %q", v))
			}
			d.cfg.Port = port
		case OptionToken:
			d.cfg.Token = v
		case OptionDatabase:
			d.cfg.Database = v
		case OptionConnectionMode:
			if v != connectionModeNative {
				return toADBC(newError(ErrInvalidArgument,
					"connection_mode %q is not handled by this driver", v))
			}
		default:
			return toADBC(newError(ErrInvalidArgument, "unknown option %q", k))
		}
	}
	return nil
}

func (d *adbcDatabase) Open(ctx context.Context) (adbc.Connection, error) {
	client, err := ConnectAndAuth(ctx, d.cfg)
	if err != nil {
		return nil, toADBC(err)
	}
	return &adbcConnection{client: client}, nil
}

func (d *adbcDatabase) Close() error { return nil }

type adbcConnection struct {
	mu     sync.Mutex
	client *NativeClient
}

var _ adbc.Connection = (*adbcConnection)(nil)

func (c *adbcConnection) NewStatement() (adbc.Statement, error) {
	return &adbcStatement{conn: c}, nil
}

func (c *adbcConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return toADBC(err)
}

// query serializes statement execution on the single underlying socket.
func (c *adbcConnection) query(sql string) (*RecordStream, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil, 0, newError(ErrInvalidState, "connection is closed")
	}
	return c.client.Query(sql)
}

func (c *adbcConnection) update(sql string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return 0, newError(ErrInvalidState, "connection is closed")
	}
	_, rowsAffected, err := c.client.ExecuteQuery(sql)
	return rowsAffected, err
}

func (c *adbcConnection) Commit(context.Context) error {
	return adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: transactions are not supported"}
}

func (c *adbcConnection) Rollback(context.Context) error {
	return adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: transactions are not supported"}
}

func (c *adbcConnection) GetInfo(context.Context, []adbc.InfoCode) (array.RecordReader, error) {
	return nil, adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: GetInfo is not implemented"}
}

func (c *adbcConnection) GetObjects(context.Context, adbc.ObjectDepth, *string, *string, *string, *string, []string) (array.RecordReader, error) {
	return nil, adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: GetObjects is not implemented"}
}

func (c *adbcConnection) GetTableSchema(context.Context, *string, *string, string) (*arrow.Schema, error) {
	return nil, adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: GetTableSchema is not implemented"}
}

func (c *adbcConnection) GetTableTypes(context.Context) (array.RecordReader, error) {
	return nil, adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: GetTableTypes is not implemented"}
}

func (c *adbcConnection) ReadPartition(context.Context, []byte) (array.RecordReader, error) {
	return nil, adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: partitioned results are not supported"}
}

type adbcStatement struct {
	conn   *adbcConnection
	sql    string
	closed bool
}

var _ adbc.Statement = (*adbcStatement)(nil)

func (s *adbcStatement) SetSqlQuery(query string) error {
	if s.closed {
		return adbc.Error{Code: adbc.StatusInvalidState, Msg: "cube: statement is closed"}
	}
	s.sql = query
	return nil
}

func (s *adbcStatement) ExecuteQuery(context.Context) (array.RecordReader, int64, error) {
	if s.closed {
		return nil, 0, adbc.Error{Code: adbc.StatusInvalidState, Msg: "cube: statement is closed"}
	}
	if s.sql == "" {
		return nil, 0, toADBC(newError(ErrInvalidArgument, "no SQL query set"))
	}
	stream, rowsAffected, err := s.conn.query(s.sql)
	if err != nil {
		return nil, 0, toADBC(err)
	}
	return stream, rowsAffected, nil
}

func (s *adbcStatement) ExecuteUpdate(context.Context) (int64, error) {
	if s.closed {
		return 0, adbc.Error{Code: adbc.StatusInvalidState, Msg: "cube: statement is closed"}
	}
	if s.sql == "" {
		return 0, toADBC(newError(ErrInvalidArgument, "no SQL query set"))
	}
	rowsAffected, err := s.conn.update(s.sql)
	if err != nil {
		return 0, toADBC(err)
	}
	return rowsAffected, nil
}

func (s *adbcStatement) Close() error {
	if s.closed {
		return adbc.Error{Code: adbc.StatusInvalidState, Msg: "cube: statement already closed"}
	}
	s.closed = true
	return nil
}

func (s *adbcStatement) SetOption(key, _ string) error {
	return adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: unknown statement option " + key}
}

func (s *adbcStatement) Prepare(context.Context) error {
	return adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: prepared statements are not supported"}
}

func (s *adbcStatement) SetSubstraitPlan([]byte) error {
	return adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: Substrait is not supported"}
}

func (s *adbcStatement) Bind(context.Context, arrow.Record) error {
	return adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: parameter binding is not supported"}
}

func (s *adbcStatement) BindStream(context.Context, array.RecordReader) error {
	return adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: parameter binding is not supported"}
}

func (s *adbcStatement) GetParameterSchema() (*arrow.Schema, error) {
	return nil, adbc.Error{Code: adbc.StatusNotImplemented, Msg: "cube: parameter binding is not supported"}
}

func (s *adbcStatement) ExecutePartitions(context.Context) (*arrow.Schema, adbc.Partitions, int64, error) {
	return nil, adbc.Partitions{}, 0, adbc.Error{
		Code: adbc.StatusNotImplemented, Msg: "cube: partitioned execution is not supported",
	}
}
