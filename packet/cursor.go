package packet

// Cursor is a read-only view over a byte slice used by every
// primitive and per-packet parser (spec §4.1). It never copies the
// underlying bytes; parsing only ever narrows the window. On any
// parse failure the cursor is left in an unspecified position — the
// caller discards it along with the error.
type Cursor struct {
	buf []byte
}

// NewCursor wraps buf for reading. buf is not copied.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Size returns the number of unread bytes.
func (c *Cursor) Size() int {
	return len(c.buf)
}

// Peek returns the byte at offset i from the cursor's current
// position without consuming it. ok is false if i is out of range.
func (c *Cursor) Peek(i int) (b byte, ok bool) {
	if i < 0 || i >= len(c.buf) {
		return 0, false
	}
	return c.buf[i], true
}

// Skip advances the cursor by n bytes, saturating at the end of the
// buffer.
func (c *Cursor) Skip(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(c.buf) {
		n = len(c.buf)
	}
	c.buf = c.buf[n:]
}

// Shorten removes n bytes from the tail of the cursor's window,
// saturating at zero. Used once the remaining-length of a PUBLISH
// variable header is known and the rest of the frame is payload.
func (c *Cursor) Shorten(n int) {
	if n < 0 {
		n = 0
	}
	end := len(c.buf) - n
	if end < 0 {
		end = 0
	}
	c.buf = c.buf[:end]
}

// Bytes returns the remaining unread bytes. The caller must not
// mutate the returned slice.
func (c *Cursor) Bytes() []byte {
	return c.buf
}

// take consumes and returns the next n bytes, or fails if fewer than
// n remain.
func (c *Cursor) take(n int) ([]byte, error) {
	if n > len(c.buf) {
		return nil, ErrShortBuffer
	}
	b := c.buf[:n]
	c.buf = c.buf[n:]
	return b, nil
}
