// Package texture stages the source picture next to the exported document under the
// fixed name the material network references.
package texture

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WEBP decoder

	"github.com/Faultbox/arframe/internal/fsutil"
	"github.com/Faultbox/arframe/pkg/formats"
)

// FileName is the fixed name of the staged texture. Material networks reference it
// relative to the document, so it must not change.
const FileName = "texture.png"

// MaxSide is the largest accepted source width or height, the texture size
// limit of common AR viewers.
const MaxSide = 16384

// ErrCopyFailure is returned when the source picture cannot be staged.
var ErrCopyFailure = errors.New("texture copy failed")

// Staged describes a texture written by Stage.
type Staged struct {
	Path   string            // dir/texture.png
	Source formats.ImageType // detected source type
	Width  int
	Height int
	// Copied is false when the source already was the staged file.
	Copied bool
	// Transcoded is true when the source was re-encoded to PNG.
	Transcoded bool
	// Sum is the SHA-256 of the staged PNG bytes.
	Sum [sha256.Size]byte
}

// Stage writes the picture at src to dir/texture.png.
//
// PNG sources are copied byte for byte. Other raster formats are transcoded to PNG
// so the fixed filename always names PNG data. Payloads that are not images, such as
// an HTML error page saved under an image name, fail with ErrCopyFailure.
func Stage(src, dir string) (*Staged, error) {
	dst := filepath.Join(dir, FileName)

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCopyFailure, src, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCopyFailure, src)
	}

	info := formats.SniffImage(data)
	if !info.Type.Decodable() {
		return nil, fmt.Errorf("%w: %s is not an image (detected %s, head %s)", ErrCopyFailure, src, info.Type, info.Hex)
	}

	// Size is read from the header so oversized sources fail before decoding.
	cfg, err := sourceConfig(data, info.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCopyFailure, src, err)
	}
	if cfg.Width > MaxSide || cfg.Height > MaxSide {
		return nil, fmt.Errorf("%w: %s is %dx%d, larger than %d px", ErrCopyFailure, src, cfg.Width, cfg.Height, MaxSide)
	}

	st := &Staged{Path: dst, Source: info.Type, Width: cfg.Width, Height: cfg.Height}
	out := data
	if info.Type != formats.ImagePNG {
		out, err = transcode(data, info.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: transcode %s from %s: %v", ErrCopyFailure, src, info.Type, err)
		}
		st.Transcoded = true
	}

	st.Sum = sha256.Sum256(out)

	if sameFile(src, dst) && !st.Transcoded {
		return st, nil
	}

	if err := fsutil.WriteFile(dst, out, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCopyFailure, err)
	}
	st.Copied = true
	return st, nil
}

func sourceConfig(data []byte, typ formats.ImageType) (image.Config, error) {
	if typ == formats.ImageTGA {
		return DecodeTGAConfig(data)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	return cfg, err
}

// transcode decodes a non-PNG raster and re-encodes it as PNG.
func transcode(data []byte, typ formats.ImageType) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	if typ == formats.ImageTGA {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
