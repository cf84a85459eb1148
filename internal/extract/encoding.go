package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// fallbackEncodings follow the preferred encoding, in this order.
var fallbackEncodings = []string{"utf-8", "latin-1", "windows-1252"}

// candidate is one entry of the attempt list. enc is nil for UTF-8, which is
// validated rather than transcoded.
type candidate struct {
	label string // as configured
	name  string // canonical, used for de-duplication and reporting
	enc   encoding.Encoding
	err   error // lookup failure; the candidate is skipped
}

// aliases resolves the names people actually write in configs. Anything else
// goes through the IANA registry. ISO-8859-1 is listed explicitly because the
// WHATWG index folds it into windows-1252.
var aliases = map[string]candidate{
	"utf-8":        {name: "utf-8"},
	"utf8":         {name: "utf-8"},
	"utf-8-sig":    {name: "utf-8"},
	"latin-1":      {name: "iso-8859-1", enc: charmap.ISO8859_1},
	"latin1":       {name: "iso-8859-1", enc: charmap.ISO8859_1},
	"l1":           {name: "iso-8859-1", enc: charmap.ISO8859_1},
	"iso-8859-1":   {name: "iso-8859-1", enc: charmap.ISO8859_1},
	"iso8859-1":    {name: "iso-8859-1", enc: charmap.ISO8859_1},
	"cp1252":       {name: "windows-1252", enc: charmap.Windows1252},
	"windows-1252": {name: "windows-1252", enc: charmap.Windows1252},
}

// lookupEncoding resolves label to a candidate. Unknown labels come back with
// err set.
func lookupEncoding(label string) candidate {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), "_", "-")
	if c, ok := aliases[key]; ok {
		c.label = label
		return c
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err == nil && enc == nil {
		err = fmt.Errorf("encoding %q is not supported", label)
	}
	if err != nil {
		return candidate{label: label, name: key, err: fmt.Errorf("unknown encoding %q: %w", label, err)}
	}
	name, nerr := ianaindex.IANA.Name(enc)
	if nerr != nil {
		name = key
	}
	name = strings.ToLower(name)
	if name == "utf-8" {
		return candidate{label: label, name: name}
	}
	return candidate{label: label, name: name, enc: enc}
}

// attemptOrder returns the preferred encoding followed by the fallbacks with
// duplicates (by canonical name) removed, order preserved. An empty preferred
// encoding is left out.
func attemptOrder(preferred string) []candidate {
	labels := fallbackEncodings
	if strings.TrimSpace(preferred) != "" {
		labels = append([]string{preferred}, fallbackEncodings...)
	}
	seen := make(map[string]bool, len(labels))
	out := make([]candidate, 0, len(labels))
	for _, l := range labels {
		c := lookupEncoding(l)
		if seen[c.name] {
			continue
		}
		seen[c.name] = true
		out = append(out, c)
	}
	return out
}

// decoder returns a reader yielding raw as UTF-8. For UTF-8 itself the bytes
// must already be valid.
func (c candidate) decoder(raw []byte) (io.Reader, error) {
	if c.enc == nil {
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("invalid utf-8 byte sequence")
		}
		return bytes.NewReader(raw), nil
	}
	return transform.NewReader(bytes.NewReader(raw), c.enc.NewDecoder()), nil
}

// detectCharset guesses the charset of raw for diagnostics. It never affects
// the attempt list.
func detectCharset(raw []byte) (charset string, confidence int) {
	const sampleSize = 64 << 10
	if len(raw) > sampleSize {
		raw = raw[:sampleSize]
	}
	res, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || res == nil {
		return "", 0
	}
	return res.Charset, res.Confidence
}
