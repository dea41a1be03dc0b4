package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// ErrUnsupportedTGA is returned for TGA variants the decoder does not handle.
var ErrUnsupportedTGA = errors.New("unsupported TGA")

type tgaHeader struct {
	idLength    int
	imageType   byte
	width       int
	height      int
	bpp         int
	topToBottom bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("TGA data too short")
	}
	h := tgaHeader{
		idLength:  int(data[0]),
		imageType: data[2],
		width:     int(data[12]) | int(data[13])<<8,
		height:    int(data[14]) | int(data[15])<<8,
		bpp:       int(data[16]),
		// Bit 5 of the descriptor selects top-to-bottom row order.
		topToBottom: data[17]&0x20 != 0,
	}

	if data[1] != 0 {
		return h, fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	}
	if h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE {
		return h, fmt.Errorf("%w: type %d (only uncompressed/RLE true-color)", ErrUnsupportedTGA, h.imageType)
	}
	if h.bpp != 24 && h.bpp != 32 {
		return h, fmt.Errorf("%w: bit depth %d (only 24/32)", ErrUnsupportedTGA, h.bpp)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("TGA has zero size %dx%d", h.width, h.height)
	}
	return h, nil
}

// DecodeTGAConfig returns the dimensions of a TGA image without decoding pixels.
func DecodeTGAConfig(data []byte) (image.Config, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}

// DecodeTGA decodes a TGA image.
// Supports uncompressed true-color (type 2) and RLE compressed (type 10) files, which
// is what image editors export for "Targa".
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	d := tgaDecoder{
		img:           image.NewNRGBA(image.Rect(0, 0, h.width, h.height)),
		pix:           data[offset:],
		bytesPerPixel: h.bpp / 8,
		hdr:           h,
	}
	if h.imageType == TGATypeUncompressed {
		err = d.decodeRaw()
	} else {
		err = d.decodeRLE()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img           *image.NRGBA
	pix           []byte
	pos           int // read offset into pix
	n             int // pixels written
	bytesPerPixel int
	hdr           tgaHeader
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() (color.NRGBA, bool) {
	if d.pos+d.bytesPerPixel > len(d.pix) {
		return color.NRGBA{}, false
	}
	p := d.pix[d.pos:]
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bytesPerPixel == 4 {
		c.A = p[3]
	}
	d.pos += d.bytesPerPixel
	return c, true
}

// put stores c at the next pixel position in file order.
func (d *tgaDecoder) put(c color.NRGBA) {
	x := d.n % d.hdr.width
	y := d.n / d.hdr.width
	if !d.hdr.topToBottom {
		y = d.hdr.height - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
	d.n++
}

func (d *tgaDecoder) total() int {
	return d.hdr.width * d.hdr.height
}

func (d *tgaDecoder) decodeRaw() error {
	if len(d.pix) < d.total()*d.bytesPerPixel {
		return fmt.Errorf("TGA pixel data truncated")
	}
	for d.n < d.total() {
		c, _ := d.next()
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	for d.n < d.total() {
		if d.pos >= len(d.pix) {
			return fmt.Errorf("TGA RLE data truncated at pixel %d of %d", d.n, d.total())
		}
		packet := d.pix[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run-length packet: one pixel repeated.
			c, ok := d.next()
			if !ok {
				return fmt.Errorf("TGA RLE packet truncated")
			}
			for i := 0; i < count && d.n < d.total(); i++ {
				d.put(c)
			}
			continue
		}

		for i := 0; i < count && d.n < d.total(); i++ {
			c, ok := d.next()
			if !ok {
				return fmt.Errorf("TGA raw packet truncated")
			}
			d.put(c)
		}
	}
	return nil
}
