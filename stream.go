package cube

import (
	"io"
	"sync/atomic"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// RecordStream adapts an ipcReader to array.RecordReader, the Go face of
// the Arrow C Data Interface stream. The stream owns the reader and the
// record most recently produced; Release drops both.
type RecordStream struct {
	refCount int64

	reader *ipcReader
	cur    arrow.Record
	err    error
	done   bool
}

var _ array.RecordReader = (*RecordStream)(nil)

func newRecordStream(r *ipcReader) *RecordStream {
	return &RecordStream{refCount: 1, reader: r}
}

func (s *RecordStream) Retain() {
	atomic.AddInt64(&s.refCount, 1)
}

func (s *RecordStream) Release() {
	if atomic.AddInt64(&s.refCount, -1) == 0 {
		if s.cur != nil {
			s.cur.Release()
			s.cur = nil
		}
		s.reader = nil
		s.done = true
	}
}

// Schema returns the stream schema. The same schema instance is returned on
// every call; it never changes across batches.
func (s *RecordStream) Schema() *arrow.Schema {
	if s.reader == nil {
		return nil
	}
	return s.reader.Schema()
}

// Next advances to the next record. It returns false at end-of-stream or on
// error; Err distinguishes the two.
func (s *RecordStream) Next() bool {
	if s.cur != nil {
		s.cur.Release()
		s.cur = nil
	}
	if s.done || s.err != nil || s.reader == nil {
		return false
	}
	rec, err := s.reader.Next()
	if err == io.EOF {
		s.done = true
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	s.cur = rec
	return true
}

func (s *RecordStream) Record() arrow.Record { return s.cur }

func (s *RecordStream) Err() error { return s.err }
