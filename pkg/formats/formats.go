// Package formats identifies 3D document and image payloads by their leading bytes.
package formats

import "fmt"

// Encoding is the serialization subformat of a document.
type Encoding int

// Encoding constants.
const (
	EncodingUnknown Encoding = iota
	EncodingASCII
	EncodingBinary
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ParseEncoding parses an encoding name as written in config files and flags.
// Case-sensitive. "ascii" also accepts the aliases "usda" and "text"; "binary"
// also accepts "usdc".
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "ascii", "usda", "text":
		return EncodingASCII, nil
	case "binary", "usdc":
		return EncodingBinary, nil
	default:
		return EncodingUnknown, fmt.Errorf("unknown encoding %q (want ascii, usda, text, binary or usdc)", s)
	}
}

// MarshalText implements encoding.TextMarshaler for config files.
func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for config files.
func (e *Encoding) UnmarshalText(text []byte) error {
	parsed, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Family is the document format family.
type Family string

// Document families.
const (
	FamilyUnknown Family = ""
	FamilyUSD     Family = "usd"
	FamilyGLTF    Family = "gltf"
)

// Signature is the classification of a document header.
type Signature struct {
	Family   Family
	Encoding Encoding
	// Magic holds the leading bytes that were classified, for diagnostics.
	Magic string
}

// String returns "family/encoding", e.g. "usd/binary".
func (s Signature) String() string {
	if s.Family == FamilyUnknown {
		return "unknown"
	}
	return fmt.Sprintf("%s/%s", s.Family, s.Encoding)
}

// Known reports whether the header matched a supported document format.
func (s Signature) Known() bool {
	return s.Family != FamilyUnknown && s.Encoding != EncodingUnknown
}
