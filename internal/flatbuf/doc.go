// Package flatbuf holds FlatBuffers accessors for the Apache Arrow IPC
// metadata tables (Message.fbs, Schema.fbs), trimmed to the tables and
// enums the native protocol reader consumes.
package flatbuf
