package transport

import "bytes"

// lineSplitter reassembles logical lines from arbitrary chunk boundaries.
// A chunk may end mid-line; the unterminated remainder is carried forward
// and prefixed to the next chunk before re-splitting.
type lineSplitter struct {
	remainder []byte
}

// feed consumes one chunk and returns the complete lines it closed.
func (s *lineSplitter) feed(chunk []byte) [][]byte {
	if len(chunk) == 0 {
		return nil
	}

	data := chunk
	if len(s.remainder) > 0 {
		data = append(s.remainder, chunk...)
		s.remainder = nil
	}

	var lines [][]byte
	for {
		newline := bytes.IndexByte(data, '\n')
		if newline < 0 {
			break
		}
		lines = append(lines, trimLineEnding(data[:newline]))
		data = data[newline+1:]
	}

	if len(data) > 0 {
		s.remainder = append([]byte(nil), data...)
	}
	return lines
}

// flush returns the carried remainder as a final line, if any. Called at
// end of stream for bodies that do not terminate the last line.
func (s *lineSplitter) flush() []byte {
	if len(s.remainder) == 0 {
		return nil
	}
	line := trimLineEnding(s.remainder)
	s.remainder = nil
	return line
}

func trimLineEnding(line []byte) []byte {
	return bytes.TrimSuffix(line, []byte{'\r'})
}
