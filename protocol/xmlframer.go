package protocol

import (
	"encoding/xml"
	"fmt"
	"io"
)

func newXMLDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	return dec
}

type xmlFramer struct {
	dec *xml.Decoder
	w   io.Writer
}

// Next pulls the next start/end element from the underlying decoder,
// skipping character data and comments: every piece of item state lives
// in attributes under this wire format, never in element text.
func (f *xmlFramer) Next() (Token, error) {
	for {
		tok, err := f.dec.Token()
		if err == io.EOF {
			return Token{Kind: TokenEOF}, nil
		}
		if err != nil {
			return Token{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			return Token{Kind: TokenStartElement, Name: t.Name.Local, Attrs: attrs}, nil
		case xml.EndElement:
			return Token{Kind: TokenEndElement, Name: t.Name.Local}, nil
		default:
			continue
		}
	}
}

// WriteStart emits a self-describing element's opening tag in the given
// attribute order.
func (f *xmlFramer) WriteStart(name string, keys []string, attrs map[string]string) error {
	if _, err := fmt.Fprintf(f.w, "<%s", name); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(f.w, " %s=%q", k, xmlEscapeAttr(attrs[k])); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(f.w, ">")
	return err
}

func (f *xmlFramer) WriteEnd(name string) error {
	_, err := fmt.Fprintf(f.w, "</%s>", name)
	return err
}

func xmlEscapeAttr(s string) string {
	var buf []byte
	w := &byteWriter{buf: &buf}
	if err := xml.EscapeText(w, []byte(s)); err != nil {
		return s
	}
	return string(buf)
}

type byteWriter struct{ buf *[]byte }

func (w *byteWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
