// File: settings/codec.go
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format identifies an on-disk serialization format. Formats are selected
// by file extension, never by sniffing content.
type Format string

const (
	// FormatJSON is pretty-printed, tree-structured text.
	FormatJSON Format = "json"
	// FormatTOML is line-oriented config text. TOML requires an object at
	// the document root.
	FormatTOML Format = "toml"
	// FormatYAML is tree-structured text.
	FormatYAML Format = "yaml"
	// FormatCBOR is a self-describing binary encoding (RFC 8949).
	FormatCBOR Format = "cbor"
	// FormatBinary is a compact, length-prefixed binary encoding
	// (MessagePack).
	FormatBinary Format = "bin"
)

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// FormatForExtension maps a file extension (with or without a leading dot)
// to a Format. Unknown extensions return ErrUnsupportedFormat.
func FormatForExtension(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	case "bin":
		return FormatBinary, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Encode serializes a canonical value tree into the given format.
// Integer and floating-point leaves survive a round-trip in every format;
// TOML and YAML cannot distinguish a float holding a whole number from an
// integer, which is why valueEqual compares leaves numerically.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, serializationError("json encode", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		root, ok := v.(map[string]any)
		if !ok {
			return nil, serializationError("toml encode",
				fmt.Errorf("toml requires an object at the document root, got %T", v))
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(root); err != nil {
			return nil, serializationError("toml encode", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, serializationError("yaml encode", err)
		}
		return data, nil
	case FormatCBOR:
		data, err := cbor.Marshal(v)
		if err != nil {
			return nil, serializationError("cbor encode", err)
		}
		return data, nil
	case FormatBinary:
		data, err := msgpack.Marshal(v)
		if err != nil {
			return nil, serializationError("msgpack encode", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode parses bytes in the given format into a normalized value tree.
func Decode(data []byte, format Format) (any, error) {
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		var v any
		if err := decoder.Decode(&v); err != nil {
			return nil, serializationError("json decode", err)
		}
		return normalizeValue(v), nil
	case FormatTOML:
		root := make(map[string]any)
		if err := toml.Unmarshal(data, &root); err != nil {
			return nil, serializationError("toml decode", err)
		}
		return normalizeValue(root), nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, serializationError("yaml decode", err)
		}
		return normalizeValue(v), nil
	case FormatCBOR:
		var v any
		if err := cbor.Unmarshal(data, &v); err != nil {
			return nil, serializationError("cbor decode", err)
		}
		return normalizeValue(v), nil
	case FormatBinary:
		var v any
		if err := msgpack.Unmarshal(data, &v); err != nil {
			return nil, serializationError("msgpack decode", err)
		}
		return normalizeValue(v), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
