package sheet

// stream.go wraps uploaded byte streams before any parsing happens.
//
// Two transforms, applied in order by Clean:
//   - bomReader skips a leading UTF-8 BOM (0xEF 0xBB 0xBF), common in files
//     exported from Windows spreadsheet tools.
//   - utf8Reader replaces invalid UTF-8 bytes with '?' on the fly, so the
//     CSV reader never chokes on legacy encodings. '?' is used instead of
//     U+FFFD to keep the replacement single-byte and avoid growing the
//     buffer mid-stream.
//
// Both wrappers hold O(1) state; files are never buffered whole.

import (
	"io"
	"unicode/utf8"
)

// Clean wraps r with BOM skipping and UTF-8 sanitizing.
func Clean(r io.Reader) io.Reader {
	return newUTF8Reader(newBOMReader(r))
}

// bomReader skips a leading UTF-8 byte order mark, if present.
type bomReader struct {
	r       io.Reader
	checked bool
	held    []byte // first bytes read back out when they were not a BOM
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n > 0 {
			if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
				// BOM found, drop it.
			} else {
				b.held = append(b.held, buf[:n]...)
			}
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(b.held) > 0 {
		n := copy(p, b.held)
		b.held = b.held[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Reader replaces invalid UTF-8 bytes with '?' as data flows through.
// Bytes that might be the start of a multi-byte rune split across reads are
// held back until the next call.
type utf8Reader struct {
	r       io.Reader
	pending []byte
}

func newUTF8Reader(r io.Reader) *utf8Reader {
	return &utf8Reader{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (u *utf8Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, u.pending)
	u.pending = u.pending[:0]

	n, err := u.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	// Fast path: pure ASCII needs no inspection.
	if allASCII(p[:n]) {
		return n, err
	}

	return u.sanitize(p[:n], err == io.EOF), err
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place, replacing invalid bytes with '?'. When
// not at EOF, a trailing partial rune is moved to pending instead of being
// judged early. Returns the number of bytes ready to hand out.
func (u *utf8Reader) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if r == utf8.RuneError && size <= 1 {
			if !atEOF && partialRune(data[read:]) {
				u.pending = append(u.pending, data[read:]...)
				return write
			}
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// partialRune reports whether data is a prefix of a valid multi-byte rune
// that could be completed by more input.
func partialRune(data []byte) bool {
	if len(data) == 0 || len(data) >= utf8.UTFMax {
		return false
	}
	lead := data[0]
	var want int
	switch {
	case lead >= 0xF0:
		want = 4
	case lead >= 0xE0:
		want = 3
	case lead >= 0xC0:
		want = 2
	default:
		return false
	}
	if len(data) >= want {
		return false
	}
	for _, b := range data[1:] {
		if b&0xC0 != 0x80 {
			return false
		}
	}
	return true
}
