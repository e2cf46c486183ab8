package cube

import (
	"context"
	"database/sql/driver"
	"log/slog"
)

type Conn struct {
	client *NativeClient
	// True, if the connection has been closed, else false.
	closed bool
}

// It implements the driver.ExecerContext interface.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if c.closed {
		return nil, driver.ErrBadConn
	}
	if len(args) > 0 {
		return nil, newError(ErrUnsupported, "parameter binding is not supported")
	}

	slog.Info("ExecContext called", "query", query)

	// The server answers every statement with a result stream; the IPC
	// bytes are dropped here and only the completion count is kept.
	_, rowsAffected, err := c.client.ExecuteQuery(query)
	if err != nil {
		return nil, err
	}
	return &result{rowsAffected: rowsAffected}, nil
}

// Implements the driver.QueryerContext interface.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if c.closed {
		return nil, driver.ErrBadConn
	}
	if len(args) > 0 {
		return nil, newError(ErrUnsupported, "parameter binding is not supported")
	}

	slog.Info("QueryContext called", "query", query)

	stream, _, err := c.client.Query(query)
	if err != nil {
		return nil, err
	}
	return newRows(stream), nil
}

// Ping implements the driver.Pinger interface.
// It verifies the connection to the Cube server is still alive.
func (c *Conn) Ping(ctx context.Context) error {
	if c.closed {
		return driver.ErrBadConn
	}

	// Execute a simple query to verify the connection.
	rows, err := c.QueryContext(ctx, "SELECT 1", nil)
	if err != nil {
		return err
	}

	if rows != nil {
		rows.Close()
	}

	return nil
}

// Implements the driver.Conn interface.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	if c.closed {
		return nil, newError(ErrInvalidState, "connection closed")
	}
	stmt := &Stmt{conn: c, query: query}
	return stmt, nil
}

// Begin is deprecated: Use BeginTx instead.
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Implements the driver.ConnBeginTx interface. The native protocol has no
// transaction messages.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return nil, newError(ErrUnsupported, "transactions are not supported")
}

// Implements the driver.Conn interface.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
