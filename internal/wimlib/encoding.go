package wimlib

import (
	"golang.org/x/text/encoding/unicode"
)

// decodeOutput turns the raw stdout bytes of one invocation into text. The
// external tool nominally emits UTF-16LE for XML requests; on Windows-like
// hosts that output arrives mangled and has to be captured as 8-bit text and
// scrubbed instead. Everything else is plain 8-bit text.
func decodeOutput(raw []byte, xmlOut, windowsLike bool) (string, error) {
	if xmlOut && !windowsLike {
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	s := decode8bit(raw)
	if xmlOut {
		s = scrubXML(s)
	}
	return s, nil
}

// decode8bit maps every byte to the code point of the same value, matching a
// raw "binary" capture of the stream.
func decode8bit(raw []byte) string {
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}

// scrubXML recovers readable text from a mis-encoded 8-bit capture: the
// first two characters are a byte-order-mark remnant and are dropped, and the
// character that then leads the buffer is taken as the interleaved noise
// marker and stripped throughout. The heuristic assumes the marker does not
// legitimately occur in the payload; see DESIGN.md for the known gap.
func scrubXML(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return ""
	}
	r = r[2:]
	marker := r[0]
	out := make([]rune, 0, len(r))
	for _, c := range r {
		if c != marker {
			out = append(out, c)
		}
	}
	return string(out)
}
