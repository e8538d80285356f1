package filestore

import (
	"io"

	"github.com/mesh-intelligence/triggerlog/internal/export"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

type jsonCodec struct{}

func (jsonCodec) decode(r io.Reader) ([]types.Entry, error) {
	return export.ReadJSON(r)
}

func (jsonCodec) encode(w io.Writer, entries []types.Entry) error {
	return export.EncodeJSON(w, entries)
}

type csvCodec struct {
	feelings []string
}

func (csvCodec) decode(r io.Reader) ([]types.Entry, error) {
	return export.ReadCSV(r)
}

func (c csvCodec) encode(w io.Writer, entries []types.Entry) error {
	return export.EncodeCSV(w, entries, c.feelings)
}
