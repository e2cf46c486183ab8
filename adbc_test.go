package cube

import (
	"context"
	"errors"
	"testing"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow/go/v18/arrow/array"
)

func adbcStatus(t *testing.T, err error) adbc.Status {
	t.Helper()
	var ae adbc.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected adbc.Error, got %T: %v", err, err)
	}
	return ae.Code
}

func TestADBCOptionValidation(t *testing.T) {
	var drv ADBCDriver

	testCases := []struct {
		name string
		opts map[string]string
	}{
		{"unknown option", map[string]string{"host": "h", "token": "t", "frobnicate": "yes"}},
		{"bad port", map[string]string{"host": "h", "token": "t", "port": "not-a-port"}},
		{"foreign connection mode", map[string]string{"host": "h", "token": "t", "connection_mode": "postgres"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := drv.NewDatabase(tc.opts)
			if got := adbcStatus(t, err); got != adbc.StatusInvalidArgument {
				t.Errorf("status: got %v, want InvalidArgument", got)
			}
		})
	}
}

func TestADBCOpenRequiresHostAndToken(t *testing.T) {
	var drv ADBCDriver
	db, err := drv.NewDatabase(map[string]string{"connection_mode": "native"})
	if err != nil {
		t.Fatalf("new database failed: %v", err)
	}
	defer db.Close()

	_, err = db.Open(context.Background())
	if got := adbcStatus(t, err); got != adbc.StatusInvalidArgument {
		t.Errorf("status: got %v, want InvalidArgument", got)
	}
}

func TestADBCStatementLifecycle(t *testing.T) {
	schema := int64Schema("test")
	rec := makeRecord(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int64Builder).Append(1)
	})
	defer rec.Release()

	host, port := listenScripted(t, serverOptions{
		authOK:  true,
		results: map[string]queryResult{"SELECT 1 AS test": scriptedQuery(t, schema, rec)},
	})

	var drv ADBCDriver
	db, err := drv.NewDatabase(map[string]string{
		"host":            host,
		"port":            itoa(port),
		"token":           "tok",
		"database":        "analytics",
		"connection_mode": "native",
	})
	if err != nil {
		t.Fatalf("new database failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer conn.Close()

	stmt, err := conn.NewStatement()
	if err != nil {
		t.Fatalf("new statement failed: %v", err)
	}
	defer stmt.Close()

	// A statement with no SQL set cannot execute.
	_, _, err = stmt.ExecuteQuery(ctx)
	if got := adbcStatus(t, err); got != adbc.StatusInvalidArgument {
		t.Errorf("status: got %v, want InvalidArgument", got)
	}

	if err := stmt.SetSqlQuery("SELECT 1 AS test"); err != nil {
		t.Fatalf("set query failed: %v", err)
	}
	reader, _, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	defer reader.Release()

	if !reader.Schema().Equal(schema) {
		t.Errorf("schema mismatch: %s", reader.Schema())
	}
	if !reader.Next() {
		t.Fatalf("expected a batch (err: %v)", reader.Err())
	}
	col := reader.Record().Column(0).(*array.Int64)
	if col.Value(0) != 1 {
		t.Errorf("value: got %d, want 1", col.Value(0))
	}
}

func TestADBCServerErrorStatus(t *testing.T) {
	host, port := listenScripted(t, serverOptions{authOK: true})

	var drv ADBCDriver
	db, err := drv.NewDatabase(map[string]string{"host": host, "port": itoa(port), "token": "tok"})
	if err != nil {
		t.Fatalf("new database failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer conn.Close()

	stmt, err := conn.NewStatement()
	if err != nil {
		t.Fatalf("new statement failed: %v", err)
	}
	defer stmt.Close()

	if err := stmt.SetSqlQuery("SELECT * FROM nowhere"); err != nil {
		t.Fatalf("set query failed: %v", err)
	}
	_, _, err = stmt.ExecuteQuery(ctx)
	var ae adbc.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected adbc.Error, got %v", err)
	}
	if ae.Msg == "" {
		t.Error("server error must carry a message")
	}
}

func TestADBCUnauthenticatedStatus(t *testing.T) {
	host, port := listenScripted(t, serverOptions{authOK: false})

	var drv ADBCDriver
	db, err := drv.NewDatabase(map[string]string{"host": host, "port": itoa(port), "token": "bad"})
	if err != nil {
		t.Fatalf("new database failed: %v", err)
	}
	defer db.Close()

	_, err = db.Open(context.Background())
	if got := adbcStatus(t, err); got != adbc.StatusUnauthenticated {
		t.Errorf("status: got %v, want Unauthenticated", got)
	}
}

func TestADBCMetadataStubs(t *testing.T) {
	host, port := listenScripted(t, serverOptions{authOK: true})

	var drv ADBCDriver
	db, err := drv.NewDatabase(map[string]string{"host": host, "port": itoa(port), "token": "tok"})
	if err != nil {
		t.Fatalf("new database failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer conn.Close()

	checks := []struct {
		name string
		call func() error
	}{
		{"Commit", func() error { return conn.Commit(ctx) }},
		{"Rollback", func() error { return conn.Rollback(ctx) }},
		{"GetInfo", func() error { _, err := conn.GetInfo(ctx, nil); return err }},
		{"GetTableTypes", func() error { _, err := conn.GetTableTypes(ctx); return err }},
		{"ReadPartition", func() error { _, err := conn.ReadPartition(ctx, nil); return err }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if got := adbcStatus(t, c.call()); got != adbc.StatusNotImplemented {
				t.Errorf("status: got %v, want NotImplemented", got)
			}
		})
	}

	stmt, err := conn.NewStatement()
	if err != nil {
		t.Fatalf("new statement failed: %v", err)
	}
	defer stmt.Close()

	stmtChecks := []struct {
		name string
		call func() error
	}{
		{"Prepare", func() error { return stmt.Prepare(ctx) }},
		{"SetSubstraitPlan", func() error { return stmt.SetSubstraitPlan(nil) }},
		{"Bind", func() error { return stmt.Bind(ctx, nil) }},
		{"BindStream", func() error { return stmt.BindStream(ctx, nil) }},
		{"GetParameterSchema", func() error { _, err := stmt.GetParameterSchema(); return err }},
	}
	for _, c := range stmtChecks {
		t.Run(c.name, func(t *testing.T) {
			if got := adbcStatus(t, c.call()); got != adbc.StatusNotImplemented {
				t.Errorf("status: got %v, want NotImplemented", got)
			}
		})
	}
}
