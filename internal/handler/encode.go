package handler

import (
	"bytes"
	"encoding/json"
	"sync"
)

const (
	// Initial capacity of a response body buffer
	responseBufferSize = 512
	// Buffers grown past this by a large listing are dropped instead of pooled
	maxPooledResponseSize = 64 << 10
)

// responseEncoder pairs a body buffer with a JSON encoder writing into it
type responseEncoder struct {
	buf *bytes.Buffer
	enc *json.Encoder
}

var encoders = sync.Pool{
	New: func() any {
		buf := bytes.NewBuffer(make([]byte, 0, responseBufferSize))
		return &responseEncoder{buf: buf, enc: json.NewEncoder(buf)}
	},
}

func acquireEncoder() *responseEncoder {
	return encoders.Get().(*responseEncoder)
}

// release returns e to the pool unless its buffer outgrew the cap
func (e *responseEncoder) release() {
	if e.buf.Cap() > maxPooledResponseSize {
		return
	}
	e.buf.Reset()
	encoders.Put(e)
}
