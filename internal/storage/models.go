package storage

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"
)

type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
)

// Upload is one received file as handed to the Service.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// StoredFile describes a file that has been completely written. Nothing keeps
// track of it after the response is sent.
type StoredFile struct {
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	MediaType MediaType `json:"mediaType"`
	Size      int64     `json:"size"`
}

// RawValue is caller metadata echoed back without interpretation. JSON
// objects and arrays are echoed as JSON, everything else as a string.
type RawValue []byte

func (v RawValue) MarshalJSON() ([]byte, error) {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		return trimmed, nil
	}
	return json.Marshal(string(v))
}
