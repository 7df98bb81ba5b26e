package render

import (
	"bytes"
	"image"
	"image/png"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
)

// EncodePNG encodes img in the requested pixel format.
//
// RGBA32 keeps the alpha channel. RGB24 composes every pixel as opaque, so the
// encoder writes a colour-type-2 PNG without an alpha channel.
func EncodePNG(img *image.NRGBA, format capture.PixelFormat) ([]byte, error) {
	if img == nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "image is nil", nil)
	}
	if !format.IsValid() {
		return nil, NewRenderError(ErrCodeEncodeFailed, "unsupported pixel format: "+format.String(), nil)
	}

	var src image.Image = img
	if !format.HasAlpha() {
		src = dropAlpha(img)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, src); err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "png encoding failed", err)
	}
	return buf.Bytes(), nil
}

// dropAlpha returns an opaque copy of img keeping the stored colour values
func dropAlpha(img *image.NRGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		dst := out.Pix[y*out.Stride : y*out.Stride+rowLen]
		copy(dst, src)
		for i := 3; i < rowLen; i += 4 {
			dst[i] = 0xff
		}
	}
	return out
}
