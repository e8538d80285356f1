package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// EncodeJSON writes entries as a pretty-printed array. HTML characters are
// not escaped so free text round-trips as typed. A nil slice encodes as [].
func EncodeJSON(w io.Writer, entries []types.Entry) error {
	if entries == nil {
		entries = []types.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteJSON writes a JSON snapshot. Returns types.ErrNoEntries when there is
// nothing to export.
func WriteJSON(w io.Writer, entries []types.Entry) error {
	if len(entries) == 0 {
		return types.ErrNoEntries
	}
	return EncodeJSON(w, entries)
}

// ReadJSON parses a JSON array of entries. Anything other than an array is
// an error; callers that must fail soft treat the error as an empty store.
func ReadJSON(r io.Reader) ([]types.Entry, error) {
	var entries []types.Entry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}
