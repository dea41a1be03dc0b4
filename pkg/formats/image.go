package formats

import (
	"bytes"
	"encoding/hex"
)

// ImageType identifies a raster image payload.
type ImageType string

// Image types recognised by SniffImage.
const (
	ImageUnknown ImageType = "unknown"
	ImagePNG     ImageType = "png"
	ImageJPEG    ImageType = "jpeg"
	ImageGIF     ImageType = "gif"
	ImageWEBP    ImageType = "webp"
	ImageBMP     ImageType = "bmp"
	ImageTIFF    ImageType = "tiff"
	ImageTGA     ImageType = "tga"
	// ImageHTML marks an HTML page saved where an image was expected,
	// typically an error page returned by an image host.
	ImageHTML ImageType = "html"
)

// PNGMagic is the eight byte PNG file signature.
var PNGMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ImageInfo is the result of sniffing an image payload.
type ImageInfo struct {
	Type ImageType
	// Hex holds the first bytes in hex, for diagnostics.
	Hex string
}

// Decodable reports whether the payload is a raster image format.
func (t ImageType) Decodable() bool {
	return t != ImageUnknown && t != ImageHTML
}

// SniffImage identifies an image payload by its magic bytes.
func SniffImage(data []byte) ImageInfo {
	head := data
	if len(head) > 12 {
		head = head[:12]
	}
	info := ImageInfo{Type: ImageUnknown, Hex: hex.EncodeToString(head)}

	switch {
	case bytes.HasPrefix(data, PNGMagic):
		info.Type = ImagePNG
	case len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff:
		info.Type = ImageJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		info.Type = ImageGIF
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		info.Type = ImageWEBP
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14:
		info.Type = ImageBMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		info.Type = ImageTIFF
	case looksLikeHTML(data):
		info.Type = ImageHTML
	case looksLikeTGA(data):
		info.Type = ImageTGA
	}
	return info
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 64 {
		head = head[:64]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype"))
}

// looksLikeTGA applies header heuristics; TGA has no magic number.
// Only uncompressed (2) and RLE (10) true-color images at 24/32 bpp are accepted.
func looksLikeTGA(data []byte) bool {
	if len(data) < 18 {
		return false
	}
	colorMapType := data[1]
	imageType := data[2]
	bpp := data[16]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	return colorMapType == 0 &&
		(imageType == 2 || imageType == 10) &&
		(bpp == 24 || bpp == 32) &&
		width > 0 && height > 0
}
