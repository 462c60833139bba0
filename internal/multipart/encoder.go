// internal/multipart/encoder.go
// multipart/form-data body builder for post media, community photos and image uploads

package multipart

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Field is a plain form value.
type Field struct {
	Name  string
	Value string
}

// File is one file part. Several files may share a Name.
type File struct {
	Name     string
	Filename string
	MimeType string
	Data     []byte
}

// ProgressFunc receives the fraction of parts appended so far, in (0, 1].
type ProgressFunc func(fraction float64)

// EncodedShare is the part of an upload's progress covered by encoding. The rest is
// reported by the caller once the server accepts the body.
const EncodedShare = 0.9

// Scaled reports every fraction multiplied by share. A nil p stays nil.
func (p ProgressFunc) Scaled(share float64) ProgressFunc {
	if p == nil {
		return nil
	}
	return func(fraction float64) {
		p(fraction * share)
	}
}

// Body is an encoded multipart payload.
type Body struct {
	Data        []byte
	ContentType string
	Boundary    string
}

// Encoder builds multipart bodies. The zero value is ready to use.
type Encoder struct {
	// NewBoundary overrides boundary generation, mostly for tests.
	NewBoundary func() string
}

var ErrEmptyBody = errors.New("multipart body needs at least one field or file")

// Encode writes every field, then every file, separated by a fresh boundary, and reports
// progress after each part.
func (e Encoder) Encode(fields []Field, files []File, progress ProgressFunc) (*Body, error) {
	total := len(fields) + len(files)
	if total == 0 {
		return nil, ErrEmptyBody
	}

	boundary := e.boundary()
	var buf bytes.Buffer
	done := 0

	step := func() {
		done++
		if progress != nil {
			progress(float64(done) / float64(total))
		}
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("multipart field without name")
		}
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"\r\n\r\n", escapeQuotes(f.Name))
		buf.WriteString(f.Value)
		buf.WriteString("\r\n")
		step()
	}

	for _, f := range files {
		if f.Name == "" || f.Filename == "" {
			return nil, fmt.Errorf("multipart file part needs a field name and filename (got %q, %q)", f.Name, f.Filename)
		}
		mime := f.MimeType
		if mime == "" {
			mime = "application/octet-stream"
		}
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\n",
			escapeQuotes(f.Name), escapeQuotes(f.Filename))
		fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", mime)
		buf.Write(f.Data)
		buf.WriteString("\r\n")
		step()
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return &Body{
		Data:        buf.Bytes(),
		ContentType: "multipart/form-data; boundary=" + boundary,
		Boundary:    boundary,
	}, nil
}

func (e Encoder) boundary() string {
	if e.NewBoundary != nil {
		return e.NewBoundary()
	}
	return "Boundary-" + uuid.NewString()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
