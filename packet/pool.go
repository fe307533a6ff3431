package packet

import (
	"bytes"
	"sync"
)

// bufferPool recycles the scratch buffers used while building a
// packet's variable header + payload before the fixed header (whose
// length depends on the total) is known. Grounded on the teacher's
// packet.Buffer/GetBuffer/PutBuffer pool.
var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}
