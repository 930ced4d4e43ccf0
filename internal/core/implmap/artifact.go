package implmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// The artifact is the self-executing script a documentation page loads to
// publish the implementors map: it invokes the page's registration hook when
// one is already installed, and parks the map in the pending slot otherwise.
const (
	artifactPrefix = "(function() {var implementors = "
	artifactSuffix = ";\nif (window.register_implementors) " +
		"{window.register_implementors(implementors);} else " +
		"{window.pending_implementors = implementors;}})()\n"

	artifactMarker = "var implementors = "
)

// WriteArtifact renders m into the generated-script artifact form.
// Keys are sorted, so the output bytes are stable for a given map.
func WriteArtifact(w io.Writer, m ImplementorMap) error {
	var buf bytes.Buffer
	buf.WriteString(artifactPrefix)
	if err := encodeSorted(&buf, m); err != nil {
		return err
	}
	buf.WriteString(artifactSuffix)
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderArtifact is WriteArtifact into a byte slice.
func RenderArtifact(m ImplementorMap) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteArtifact(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseArtifact recovers the implementors map from an artifact produced by
// WriteArtifact or by a compatible documentation build. Only the object
// literal is read; the surrounding script is not evaluated.
func ParseArtifact(data []byte) (ImplementorMap, error) {
	idx := bytes.Index(data, []byte(artifactMarker))
	if idx < 0 {
		return nil, fmt.Errorf("parse implementors artifact: marker %q not found", artifactMarker)
	}
	dec := json.NewDecoder(bytes.NewReader(data[idx+len(artifactMarker):]))
	var m ImplementorMap
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse implementors artifact: %w", err)
	}
	return m, nil
}

// encodeSorted writes the map as a JSON object with lexicographically sorted
// keys. The markup strings must stay byte-exact, so HTML escaping of <, >
// and & is disabled: the artifact carries the markup verbatim, the way the
// documentation build emits it.
func encodeSorted(buf *bytes.Buffer, m ImplementorMap) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	encode := func(v any) error {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("render implementors artifact: %w", err)
		}
		// Encode appends a newline after every value.
		buf.Truncate(buf.Len() - 1)
		return nil
	}

	buf.WriteByte('{')
	for i, trait := range m.Traits() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(trait); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encode(m[trait]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
