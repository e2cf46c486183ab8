package cube

import (
	"encoding/binary"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/bitutil"
	"github.com/apache/arrow/go/v18/arrow/memory"
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/borodark/adbc/internal/flatbuf"
)

// continuationMarker prefixes every message in an Arrow IPC stream.
const continuationMarker = 0xFFFFFFFF

// ipcReader walks a byte buffer holding one Arrow IPC stream: a Schema
// message followed by zero or more RecordBatch messages and an end-of-stream
// marker. Arrays are materialized over slices of the stream buffer; the
// buffer stays alive for as long as any produced record references it.
type ipcReader struct {
	buf      []byte
	cursor   int
	schema   *arrow.Schema
	finished bool
}

// ipcMessage is one decoded stream entry: FlatBuffer metadata plus the raw
// body region holding the concatenated, 8-byte-aligned buffers.
type ipcMessage struct {
	meta *flatbuf.Message
	body []byte
}

// newIPCReader parses the stream prefix up to and including the Schema
// message. The first non-terminal message must be a Schema; anything else,
// including an immediately empty stream, is a protocol violation.
func newIPCReader(buf []byte) (*ipcReader, error) {
	r := &ipcReader{buf: buf}
	msg, err := r.readIPCMessage()
	if err == io.EOF {
		return nil, newError(ErrProtocol, "IPC stream carries no schema")
	}
	if err != nil {
		return nil, err
	}
	if got := msg.meta.HeaderType(); got != flatbuf.MessageHeaderSchema {
		return nil, newError(ErrProtocol, "IPC stream starts with %s, expected Schema", got)
	}
	schema, err := decodeSchema(msg.meta)
	if err != nil {
		return nil, err
	}
	r.schema = schema
	return r, nil
}

func (r *ipcReader) Schema() *arrow.Schema { return r.schema }

// Next decodes the next RecordBatch. It returns io.EOF once the
// end-of-stream marker has been seen; further calls keep returning io.EOF.
func (r *ipcReader) Next() (arrow.Record, error) {
	msg, err := r.readIPCMessage()
	if err != nil {
		return nil, err
	}
	switch msg.meta.HeaderType() {
	case flatbuf.MessageHeaderRecordBatch:
		return r.decodeRecordBatch(msg)
	case flatbuf.MessageHeaderSchema:
		return nil, newError(ErrProtocol, "second Schema message in IPC stream")
	case flatbuf.MessageHeaderDictionaryBatch:
		return nil, newError(ErrUnsupported, "dictionary batches are not supported")
	default:
		return nil, newError(ErrProtocol, "unexpected IPC message header %s", msg.meta.HeaderType())
	}
}

// readIPCMessage consumes one [continuation][size][metadata][body] region
// and advances the cursor past it, 8-byte aligned. Running off the end of
// the buffer without an explicit EOS marker also terminates the stream.
func (r *ipcReader) readIPCMessage() (*ipcMessage, error) {
	if r.finished || r.cursor >= len(r.buf) {
		r.finished = true
		return nil, io.EOF
	}
	if len(r.buf)-r.cursor < 8 {
		return nil, newError(ErrProtocol, "truncated IPC message prefix at offset %d", r.cursor)
	}
	if marker := binary.LittleEndian.Uint32(r.buf[r.cursor:]); marker != continuationMarker {
		return nil, newError(ErrProtocol, "bad IPC continuation marker 0x%08X at offset %d", marker, r.cursor)
	}
	metaLen := int(binary.LittleEndian.Uint32(r.buf[r.cursor+4:]))
	if metaLen == 0 {
		r.finished = true
		r.cursor += 8
		return nil, io.EOF
	}

	metaStart := r.cursor + 8
	if metaLen > len(r.buf)-metaStart {
		return nil, newError(ErrProtocol, "IPC metadata length %d exceeds remaining stream", metaLen)
	}
	meta := flatbuf.GetRootAsMessage(r.buf[metaStart:metaStart+metaLen], 0)

	bodyStart := align8(metaStart + metaLen)
	bodyLen := meta.BodyLength()
	if bodyLen < 0 || bodyLen > int64(len(r.buf)-bodyStart) {
		return nil, newError(ErrProtocol, "IPC body length %d exceeds remaining stream", bodyLen)
	}
	body := r.buf[bodyStart : bodyStart+int(bodyLen)]
	r.cursor = align8(bodyStart + int(bodyLen))
	return &ipcMessage{meta: meta, body: body}, nil
}

func align8(n int) int { return (n + 7) &^ 7 }

// decodeSchema maps the FlatBuffer Schema header onto an arrow.Schema,
// rejecting every type outside the driver's closed supported set.
func decodeSchema(meta *flatbuf.Message) (*arrow.Schema, error) {
	var tbl flatbuffers.Table
	if !meta.Header(&tbl) {
		return nil, newError(ErrProtocol, "Schema message has no header table")
	}
	var fb flatbuf.Schema
	fb.Init(tbl.Bytes, tbl.Pos)

	fields := make([]arrow.Field, fb.FieldsLength())
	for i := range fields {
		var f flatbuf.Field
		if !fb.Fields(&f, i) {
			return nil, newError(ErrProtocol, "schema field %d is missing", i)
		}
		name := string(f.Name())
		if f.Dictionary(nil) != nil {
			return nil, newError(ErrUnsupported, "column %q is dictionary-encoded", name)
		}
		dt, err := decodeFieldType(&f, name)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: f.Nullable()}
	}
	return arrow.NewSchema(fields, nil), nil
}

func decodeFieldType(f *flatbuf.Field, name string) (arrow.DataType, error) {
	var tbl flatbuffers.Table
	if !f.Type(&tbl) {
		return nil, newError(ErrProtocol, "column %q has no type", name)
	}
	switch f.TypeType() {
	case flatbuf.TypeInt:
		var t flatbuf.Int
		t.Init(tbl.Bytes, tbl.Pos)
		return intType(t.BitWidth(), t.IsSigned(), name)
	case flatbuf.TypeFloatingPoint:
		var t flatbuf.FloatingPoint
		t.Init(tbl.Bytes, tbl.Pos)
		switch t.Precision() {
		case flatbuf.PrecisionHALF:
			return arrow.FixedWidthTypes.Float16, nil
		case flatbuf.PrecisionSINGLE:
			return arrow.PrimitiveTypes.Float32, nil
		case flatbuf.PrecisionDOUBLE:
			return arrow.PrimitiveTypes.Float64, nil
		}
		return nil, newError(ErrProtocol, "column %q has unknown float precision", name)
	case flatbuf.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case flatbuf.TypeUtf8:
		return arrow.BinaryTypes.String, nil
	case flatbuf.TypeBinary:
		return arrow.BinaryTypes.Binary, nil
	case flatbuf.TypeDate:
		var t flatbuf.Date
		t.Init(tbl.Bytes, tbl.Pos)
		if t.Unit() != flatbuf.DateUnitDAY {
			return nil, newError(ErrUnsupported, "column %q: date unit %s", name, t.Unit())
		}
		return arrow.FixedWidthTypes.Date32, nil
	case flatbuf.TypeTime:
		var t flatbuf.Time
		t.Init(tbl.Bytes, tbl.Pos)
		if t.BitWidth() != 64 {
			return nil, newError(ErrUnsupported, "column %q: %d-bit time", name, t.BitWidth())
		}
		unit, err := timeUnit(t.Unit(), name)
		if err != nil {
			return nil, err
		}
		return &arrow.Time64Type{Unit: unit}, nil
	case flatbuf.TypeTimestamp:
		var t flatbuf.Timestamp
		t.Init(tbl.Bytes, tbl.Pos)
		unit, err := timeUnit(t.Unit(), name)
		if err != nil {
			return nil, err
		}
		return &arrow.TimestampType{Unit: unit, TimeZone: string(t.Timezone())}, nil
	default:
		return nil, newError(ErrUnsupported, "column %q has unsupported type %s", name, f.TypeType())
	}
}

func intType(bitWidth int32, signed bool, name string) (arrow.DataType, error) {
	if signed {
		switch bitWidth {
		case 8:
			return arrow.PrimitiveTypes.Int8, nil
		case 16:
			return arrow.PrimitiveTypes.Int16, nil
		case 32:
			return arrow.PrimitiveTypes.Int32, nil
		case 64:
			return arrow.PrimitiveTypes.Int64, nil
		}
	} else {
		switch bitWidth {
		case 8:
			return arrow.PrimitiveTypes.Uint8, nil
		case 16:
			return arrow.PrimitiveTypes.Uint16, nil
		case 32:
			return arrow.PrimitiveTypes.Uint32, nil
		case 64:
			return arrow.PrimitiveTypes.Uint64, nil
		}
	}
	return nil, newError(ErrUnsupported, "column %q: %d-bit integer", name, bitWidth)
}

func timeUnit(u flatbuf.TimeUnit, name string) (arrow.TimeUnit, error) {
	switch u {
	case flatbuf.TimeUnitSECOND:
		return arrow.Second, nil
	case flatbuf.TimeUnitMILLISECOND:
		return arrow.Millisecond, nil
	case flatbuf.TimeUnitMICROSECOND:
		return arrow.Microsecond, nil
	case flatbuf.TimeUnitNANOSECOND:
		return arrow.Nanosecond, nil
	}
	return 0, newError(ErrProtocol, "column %q has unknown time unit", name)
}

// decodeRecordBatch materializes one record. Buffer descriptors are
// validated against the body region before any slice is taken: in-bounds,
// 8-byte aligned, one validity buffer plus the type's data buffers per
// field, in depth-first field order.
func (r *ipcReader) decodeRecordBatch(msg *ipcMessage) (arrow.Record, error) {
	var tbl flatbuffers.Table
	if !msg.meta.Header(&tbl) {
		return nil, newError(ErrProtocol, "RecordBatch message has no header table")
	}
	var rb flatbuf.RecordBatch
	rb.Init(tbl.Bytes, tbl.Pos)

	if rb.Compression(nil) != nil {
		return nil, newError(ErrUnsupported, "compressed record batch body")
	}
	nrows := rb.Length()
	if nrows < 0 {
		return nil, newError(ErrProtocol, "record batch has negative length %d", nrows)
	}
	nfields := r.schema.NumFields()
	if rb.NodesLength() != nfields {
		return nil, newError(ErrProtocol, "record batch has %d field nodes, schema has %d fields",
			rb.NodesLength(), nfields)
	}

	bufIdx := 0
	nextBuffer := func() ([]byte, error) {
		var b flatbuf.Buffer
		if !rb.Buffers(&b, bufIdx) {
			return nil, newError(ErrProtocol, "record batch is missing buffer %d", bufIdx)
		}
		bufIdx++
		off, length := b.Offset(), b.Length()
		if off%8 != 0 {
			return nil, newError(ErrProtocol, "buffer %d offset %d is not 8-byte aligned", bufIdx-1, off)
		}
		if off < 0 || length < 0 || off+length > int64(len(msg.body)) {
			return nil, newError(ErrProtocol, "buffer %d [%d:%d] exceeds body of %d bytes",
				bufIdx-1, off, off+length, len(msg.body))
		}
		return msg.body[off : off+length], nil
	}

	cols := make([]arrow.Array, nfields)
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()

	for i := 0; i < nfields; i++ {
		var node flatbuf.FieldNode
		if !rb.Nodes(&node, i) {
			return nil, newError(ErrProtocol, "record batch is missing field node %d", i)
		}
		if node.Length() != nrows {
			return nil, newError(ErrProtocol, "field node %d length %d does not match batch length %d",
				i, node.Length(), nrows)
		}
		col, err := r.decodeColumn(r.schema.Field(i), nrows, node.NullCount(), nextBuffer)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	if bufIdx != rb.BuffersLength() {
		return nil, newError(ErrProtocol, "record batch declares %d buffers, consumed %d",
			rb.BuffersLength(), bufIdx)
	}
	return array.NewRecord(r.schema, cols, nrows), nil
}

func (r *ipcReader) decodeColumn(field arrow.Field, nrows, nullCount int64,
	nextBuffer func() ([]byte, error)) (arrow.Array, error) {

	validity, err := nextBuffer()
	if err != nil {
		return nil, err
	}
	// An absent or empty validity buffer means every row is valid.
	var validityBuf *memory.Buffer
	if len(validity) > 0 {
		if len(validity) < int(bitutil.BytesForBits(nrows)) {
			return nil, newError(ErrProtocol, "column %q validity bitmap holds %d bytes, need %d",
				field.Name, len(validity), bitutil.BytesForBits(nrows))
		}
		validityBuf = memory.NewBufferBytes(validity)
	} else if nullCount > 0 {
		return nil, newError(ErrProtocol, "column %q has %d nulls but no validity bitmap",
			field.Name, nullCount)
	}

	var buffers []*memory.Buffer
	switch dt := field.Type.(type) {
	case *arrow.StringType, *arrow.BinaryType:
		offsets, err := nextBuffer()
		if err != nil {
			return nil, err
		}
		values, err := nextBuffer()
		if err != nil {
			return nil, err
		}
		if err := checkOffsets(field.Name, offsets, nrows, len(values)); err != nil {
			return nil, err
		}
		buffers = []*memory.Buffer{validityBuf, memory.NewBufferBytes(offsets), memory.NewBufferBytes(values)}
	case *arrow.BooleanType:
		values, err := nextBuffer()
		if err != nil {
			return nil, err
		}
		if len(values) < int(bitutil.BytesForBits(nrows)) {
			return nil, newError(ErrProtocol, "column %q value bitmap holds %d bytes, need %d",
				field.Name, len(values), bitutil.BytesForBits(nrows))
		}
		buffers = []*memory.Buffer{validityBuf, memory.NewBufferBytes(values)}
	default:
		fw, ok := field.Type.(arrow.FixedWidthDataType)
		if !ok {
			return nil, newError(ErrUnsupported, "column %q has unsupported type %s", field.Name, dt)
		}
		values, err := nextBuffer()
		if err != nil {
			return nil, err
		}
		need := nrows * int64(fw.BitWidth()/8)
		if int64(len(values)) < need {
			return nil, newError(ErrProtocol, "column %q value buffer holds %d bytes, need %d",
				field.Name, len(values), need)
		}
		buffers = []*memory.Buffer{validityBuf, memory.NewBufferBytes(values)}
	}

	data := array.NewData(field.Type, int(nrows), buffers, nil, int(nullCount), 0)
	defer data.Release()
	return array.MakeFromData(data), nil
}

// checkOffsets enforces the variable-width layout contract: int32
// little-endian offsets, one more than the row count, monotonically
// non-decreasing, with the final offset equal to the value buffer length.
func checkOffsets(name string, offsets []byte, nrows int64, valuesLen int) error {
	need := (nrows + 1) * 4
	if int64(len(offsets)) < need {
		return newError(ErrProtocol, "column %q offsets buffer holds %d bytes, need %d",
			name, len(offsets), need)
	}
	prev := int32(binary.LittleEndian.Uint32(offsets))
	if prev < 0 {
		return newError(ErrProtocol, "column %q has negative offset %d", name, prev)
	}
	for i := int64(1); i <= nrows; i++ {
		cur := int32(binary.LittleEndian.Uint32(offsets[i*4:]))
		if cur < prev {
			return newError(ErrProtocol, "column %q offsets decrease at row %d: %d -> %d",
				name, i-1, prev, cur)
		}
		prev = cur
	}
	if int(prev) != valuesLen {
		return newError(ErrProtocol, "column %q final offset %d does not match %d value bytes",
			name, prev, valuesLen)
	}
	return nil
}
