package cube

import (
	"database/sql/driver"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

type Rows struct {
	stream  *RecordStream
	rowIdx  int
	columns []string
	closed  bool
}

// newRows wraps a record stream as driver.Rows. Rows are pulled batch by
// batch; the stream keeps ownership of the current record.
func newRows(stream *RecordStream) *Rows {
	var columns []string
	if schema := stream.Schema(); schema != nil {
		for i := 0; i < schema.NumFields(); i++ {
			columns = append(columns, schema.Field(i).Name)
		}
	}

	return &Rows{
		stream:  stream,
		columns: columns,
	}
}

func (r *Rows) Columns() []string {
	return r.columns
}

func (r *Rows) Next(dest []driver.Value) error {
	if r.closed {
		return io.EOF
	}

	for {
		record := r.stream.Record()
		if record != nil && int64(r.rowIdx) < record.NumRows() {
			for i := 0; i < int(record.NumCols()); i++ {
				val, err := getValueFromColumn(record.Column(i), r.rowIdx)
				if err != nil {
					return err
				}
				dest[i] = val
			}
			r.rowIdx++
			return nil
		}

		// Current record exhausted; pull the next one.
		if !r.stream.Next() {
			if err := r.stream.Err(); err != nil {
				return err
			}
			return io.EOF
		}
		r.rowIdx = 0
	}
}

func (r *Rows) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true
	r.stream.Release()
	r.stream = nil

	return nil
}

// getValueFromColumn extracts a value from an Arrow column at the given row index
func getValueFromColumn(col arrow.Array, rowIdx int) (interface{}, error) {
	if col.IsNull(rowIdx) {
		return nil, nil
	}

	switch arr := col.(type) {
	case *array.Boolean:
		return arr.Value(rowIdx), nil
	case *array.Int8:
		return arr.Value(rowIdx), nil
	case *array.Int16:
		return arr.Value(rowIdx), nil
	case *array.Int32:
		return arr.Value(rowIdx), nil
	case *array.Int64:
		return arr.Value(rowIdx), nil
	case *array.Uint8:
		return arr.Value(rowIdx), nil
	case *array.Uint16:
		return arr.Value(rowIdx), nil
	case *array.Uint32:
		return arr.Value(rowIdx), nil
	case *array.Uint64:
		return arr.Value(rowIdx), nil
	case *array.Float16:
		return arr.Value(rowIdx).Float32(), nil
	case *array.Float32:
		return arr.Value(rowIdx), nil
	case *array.Float64:
		return arr.Value(rowIdx), nil
	case *array.String:
		return arr.Value(rowIdx), nil
	case *array.Binary:
		return arr.Value(rowIdx), nil
	case *array.Date32:
		return arr.Value(rowIdx).ToTime(), nil
	case *array.Time64:
		return arr.Value(rowIdx).ToTime(arr.DataType().(*arrow.Time64Type).Unit), nil
	case *array.Timestamp:
		return arr.Value(rowIdx).ToTime(arr.DataType().(*arrow.TimestampType).Unit), nil
	default:
		return nil, newError(ErrUnsupported, "cannot convert Arrow type %T", arr)
	}
}
