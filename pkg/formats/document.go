package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Document sniffing errors.
var (
	ErrEmptyHeader = errors.New("empty document header")
)

// HeaderSize is the number of leading bytes SniffDocument looks at.
const HeaderSize = 16

// Leading byte signatures.
const (
	usdcMagic = "PXR-USDC"
	usdaMagic = "#usda"
	glbMagic  = "glTF"
)

// SniffDocument classifies a document by its leading bytes.
// Recognised headers:
//
//	"PXR-USDC"  USD crate (binary)
//	"#usda"     USD text layer
//	"glTF"      glTF binary container
//	"{"         glTF JSON (leading whitespace and a UTF-8 BOM are skipped)
func SniffDocument(header []byte) (Signature, error) {
	if len(header) == 0 {
		return Signature{}, ErrEmptyHeader
	}
	if len(header) > HeaderSize {
		header = header[:HeaderSize]
	}

	sig := Signature{Magic: printable(header)}
	switch {
	case bytes.HasPrefix(header, []byte(usdcMagic)):
		sig.Family, sig.Encoding = FamilyUSD, EncodingBinary
	case bytes.HasPrefix(header, []byte(usdaMagic)):
		sig.Family, sig.Encoding = FamilyUSD, EncodingASCII
	case bytes.HasPrefix(header, []byte(glbMagic)):
		sig.Family, sig.Encoding = FamilyGLTF, EncodingBinary
	default:
		trimmed := bytes.TrimLeft(bytes.TrimPrefix(header, []byte("\xef\xbb\xbf")), " \t\r\n")
		if len(trimmed) > 0 && trimmed[0] == '{' {
			sig.Family, sig.Encoding = FamilyGLTF, EncodingASCII
		}
	}
	return sig, nil
}

// SniffDocumentFile reads the header of a document on disk and classifies it.
func SniffDocumentFile(path string) (Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signature{}, err
	}
	defer f.Close()

	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Signature{}, fmt.Errorf("reading header: %w", err)
	}
	return SniffDocument(header[:n])
}

// printable renders header bytes for logs, escaping anything outside ASCII.
func printable(b []byte) string {
	var sb bytes.Buffer
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "\\x%02x", c)
		}
	}
	return sb.String()
}
