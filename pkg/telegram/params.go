package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"sort"
	"strconv"
)

// Transport selects how a request is sent to the Bot API.
type Transport int

const (
	// TransportGet sends parameters in the query string.
	TransportGet Transport = iota
	// TransportPost sends parameters as a multipart/form-data body.
	TransportPost
)

func (t Transport) String() string {
	if t == TransportPost {
		return "POST"
	}
	return "GET"
}

// Params is the parameter mapping of a single API call. Absent optional
// arguments are never stored; see the Set* helpers.
type Params map[string]any

// Set stores a required parameter.
func (p Params) Set(key string, v any) {
	p[key] = v
}

// SetString stores s unless it is empty.
func (p Params) SetString(key, s string) {
	if s != "" {
		p[key] = s
	}
}

// SetInt stores n unless it is zero.
func (p Params) SetInt(key string, n int64) {
	if n != 0 {
		p[key] = n
	}
}

// SetBool stores b only when it is true.
func (p Params) SetBool(key string, b bool) {
	if b {
		p[key] = true
	}
}

// SetMarkup stores reply markup in the shape the transport expects:
// JSON text for GET, the structured value for multipart POST.
func (p Params) SetMarkup(key string, m ReplyMarkup, t Transport) {
	if m == nil {
		return
	}
	if t == TransportPost {
		p[key] = m
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		p[key] = encodeError{err}
		return
	}
	p[key] = string(data)
}

// encodeError holds a value that failed to encode. The call that sends the
// params reports it.
type encodeError struct{ err error }

// SetFile stores a media argument: the reference string for remote files,
// the InputFile itself for uploads.
func (p Params) SetFile(key string, f InputFile) {
	if f.IsRemote() {
		p[key] = f.Ref
		return
	}
	p[key] = f
}

func (p Params) sortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Params) query() (url.Values, error) {
	q := make(url.Values, len(p))
	for _, k := range p.sortedKeys() {
		v := p[k]
		if f, ok := v.(InputFile); ok {
			if !f.IsRemote() {
				return nil, fmt.Errorf("parameter %q: file content cannot be sent in a query string", k)
			}
			q.Set(k, f.Ref)
			continue
		}
		s, err := formatValue(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		q.Set(k, s)
	}
	return q, nil
}

func (p Params) writeMultipart(w *multipart.Writer) error {
	for _, k := range p.sortedKeys() {
		v := p[k]
		if f, ok := v.(InputFile); ok && !f.IsRemote() {
			part, err := w.CreateFormFile(k, f.fileName())
			if err != nil {
				return fmt.Errorf("parameter %q: %w", k, err)
			}
			if _, err := io.Copy(part, f.reader()); err != nil {
				return fmt.Errorf("parameter %q: %w", k, err)
			}
			continue
		}
		if f, ok := v.(InputFile); ok {
			v = f.Ref
		}
		s, err := formatValue(v)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", k, err)
		}
		if err := w.WriteField(k, s); err != nil {
			return fmt.Errorf("parameter %q: %w", k, err)
		}
	}
	return nil
}

// formatValue renders one parameter as the Bot API expects it on the wire.
func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case encodeError:
		return "", x.err
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// InputFile is a media argument: either a reference the API already knows
// (a file_id or an HTTP URL) or raw content to upload.
type InputFile struct {
	// Ref is a file_id or URL. Non-empty Ref means the file is remote.
	Ref string

	// Name is the file name reported in the multipart part.
	Name string

	data []byte
	r    io.Reader
}

// FileRef refers to a file by file_id or URL.
func FileRef(idOrURL string) InputFile {
	return InputFile{Ref: idOrURL}
}

// FileBytes uploads data under the given file name.
func FileBytes(name string, data []byte) InputFile {
	return InputFile{Name: name, data: data}
}

// FileReader uploads the content of r under the given file name.
// The reader is consumed once.
func FileReader(name string, r io.Reader) InputFile {
	return InputFile{Name: name, r: r}
}

// IsRemote reports whether the file is a reference rather than content.
func (f InputFile) IsRemote() bool {
	return f.Ref != ""
}

// MarshalJSON renders a remote reference as its string form. Uploaded
// content has no JSON representation.
func (f InputFile) MarshalJSON() ([]byte, error) {
	if !f.IsRemote() {
		return nil, fmt.Errorf("telegram: file %q has no JSON form", f.Name)
	}
	return json.Marshal(f.Ref)
}

func (f InputFile) fileName() string {
	if f.Name == "" {
		return "file"
	}
	return f.Name
}

func (f InputFile) reader() io.Reader {
	if f.r != nil {
		return f.r
	}
	return bytes.NewReader(f.data)
}
