package uni20

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Serializer converts between Go values and the byte payloads carried by a
// Transport. The probe announces which codec its interpreter supports;
// MessagePack is preferred, JSON is the fallback for interpreters without
// the msgpack package.
type Serializer interface {
	// Marshal encodes a Go value to bytes.
	Marshal(v interface{}) ([]byte, error)

	// Unmarshal decodes bytes into a Go value.
	Unmarshal(data []byte, v interface{}) error
}

// MsgpackSerializer encodes payloads as MessagePack.
type MsgpackSerializer struct{}

func (MsgpackSerializer) Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackSerializer) Unmarshal(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}

// JSONSerializer encodes payloads as JSON. Used when the probe interpreter
// lacks the msgpack package; the buildinfo payload is strings-only so JSON
// loses nothing.
type JSONSerializer struct{}

func (JSONSerializer) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// serializerForCodec maps a codec name from the probe's ready message to the
// matching Serializer. Unknown names fall back to JSON, which the probe can
// always produce.
func serializerForCodec(name string) Serializer {
	if name == "msgpack" {
		return MsgpackSerializer{}
	}
	return JSONSerializer{}
}

// Transport sends and receives framed byte messages. The default
// implementation uses a 4-byte big-endian length prefix over pipes; the
// probe's Python side implements the identical framing.
type Transport interface {
	// Send transmits one framed message.
	Send(data []byte) error

	// Receive reads one complete framed message.
	Receive() ([]byte, error)

	// Close releases the underlying pipes.
	Close() error
}

// FrameTransport implements Transport with length-prefixed frames.
// A small buffer pool covers frame headers and typical message bodies;
// oversized bodies are allocated directly.
type FrameTransport struct {
	reader io.ReadCloser
	writer io.WriteCloser
	pool   *BufferPool
}

// NewFrameTransport creates a FrameTransport over the given pipe ends.
func NewFrameTransport(reader io.ReadCloser, writer io.WriteCloser) *FrameTransport {
	return &FrameTransport{
		reader: reader,
		writer: writer,
		pool:   NewBufferPool(8192, 8),
	}
}

// Send writes the 4-byte length prefix followed by the body.
func (t *FrameTransport) Send(data []byte) error {
	header := t.pool.Get()[:4]
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	if _, err := t.writer.Write(header); err != nil {
		t.pool.Put(header)
		return err
	}
	t.pool.Put(header)

	_, err := t.writer.Write(data)
	return err
}

// Receive reads the length prefix and then the complete body.
func (t *FrameTransport) Receive() ([]byte, error) {
	header := t.pool.Get()[:4]
	if _, err := io.ReadFull(t.reader, header); err != nil {
		t.pool.Put(header)
		return nil, err
	}
	length := binary.BigEndian.Uint32(header)
	t.pool.Put(header)

	// Small bodies go through the pool; the frame is copied out so the
	// buffer can be returned immediately.
	if length <= uint32(t.pool.bufSize) {
		buf := t.pool.Get()[:length]
		if _, err := io.ReadFull(t.reader, buf); err != nil {
			t.pool.Put(buf)
			return nil, err
		}
		body := make([]byte, length)
		copy(body, buf)
		t.pool.Put(buf)
		return body, nil
	}

	body := make([]byte, length)
	_, err := io.ReadFull(t.reader, body)
	return body, err
}

// Close closes both pipe ends, reporting the first error.
func (t *FrameTransport) Close() error {
	err := t.reader.Close()
	if werr := t.writer.Close(); err == nil {
		err = werr
	}
	return err
}
