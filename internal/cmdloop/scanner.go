package cmdloop

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// scanner reads the three shapes the command stream is made of: whitespace
// delimited tokens, the rest of a line, and blocks ending in a delimiter.
type scanner struct {
	r *bufio.Reader
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r)}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// token skips leading whitespace and returns the next token. The byte that
// ends the token is left unread so that line sees it. io.EOF is returned only
// when no token remains.
func (s *scanner) token() (string, error) {
	var b []byte
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(b) > 0 {
				return string(b), nil
			}
			return "", err
		}
		if isSpace(c) {
			if len(b) == 0 {
				continue
			}
			if err := s.r.UnreadByte(); err != nil {
				return "", err
			}
			return string(b), nil
		}
		b = append(b, c)
	}
}

// line returns the remainder of the current line without its terminator.
// A final unterminated line is returned with a nil error.
func (s *scanner) line() (string, error) {
	l, err := s.r.ReadString('\n')
	if err != nil && !(err == io.EOF && l != "") {
		return "", err
	}
	return strings.TrimRight(l, "\r\n"), nil
}

// until reads through the first occurrence of delim and returns everything
// read, delim included. If the stream ends first, the partial block is
// returned with io.ErrUnexpectedEOF.
func (s *scanner) until(delim string) ([]byte, error) {
	d := []byte(delim)
	last := d[len(d)-1]
	var buf []byte
	for {
		chunk, err := s.r.ReadSlice(last)
		buf = append(buf, chunk...)
		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if len(bytes.TrimSpace(buf)) == 0 {
				return nil, io.EOF
			}
			return buf, io.ErrUnexpectedEOF
		case err != nil:
			return buf, err
		}
		if bytes.HasSuffix(buf, d) {
			return buf, nil
		}
	}
}
