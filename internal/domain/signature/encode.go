package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
)

// DataURIPrefix is the scheme prefix every captured signature carries.
const DataURIPrefix = "data:image/png;base64,"

// penRadius is the half-width of the rendered pen in pixels.
const penRadius = 1

var penColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// encodeStrokes rasterizes the strokes onto a transparent canvas and
// returns the PNG as a base64 data URI. The output depends only on the
// dimensions and the stroke points, which is what makes Save idempotent.
func encodeStrokes(width, height int, strokes []Stroke) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, stroke := range strokes {
		drawStroke(img, stroke)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode signature png: %w", err)
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func drawStroke(img *image.RGBA, stroke Stroke) {
	if len(stroke) == 0 {
		return
	}
	if len(stroke) == 1 {
		stamp(img, stroke[0].X, stroke[0].Y)
		return
	}
	for i := 1; i < len(stroke); i++ {
		drawSegment(img, stroke[i-1], stroke[i])
	}
}

// drawSegment stamps the pen along the segment at half-pixel steps,
// which is dense enough that consecutive stamps overlap.
func drawSegment(img *image.RGBA, a, b Point) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Hypot(dx, dy)
	steps := int(dist*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stamp(img, a.X+dx*t, a.Y+dy*t)
	}
}

func stamp(img *image.RGBA, x, y float64) {
	cx := int(math.Round(x))
	cy := int(math.Round(y))
	bounds := img.Bounds()
	for px := cx - penRadius; px <= cx+penRadius; px++ {
		for py := cy - penRadius; py <= cy+penRadius; py++ {
			if (image.Point{X: px, Y: py}).In(bounds) {
				img.SetRGBA(px, py, penColor)
			}
		}
	}
}

// DecodeDataURI decodes a captured signature back into an image. It
// rejects values that do not carry the PNG data URI prefix.
func DecodeDataURI(uri string) (image.Image, error) {
	if !strings.HasPrefix(uri, DataURIPrefix) {
		return nil, fmt.Errorf("signature is not a PNG data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode signature base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode signature png: %w", err)
	}
	return img, nil
}

// IsBlank reports whether the image contains no visible pixels. An
// empty-canvas encoding is blank even though it is a well-formed PNG.
func IsBlank(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}

// ValidateDataURI checks that uri is a well-formed PNG data URI with
// non-empty pixel content. It is the predicate the record validator
// applies to prepared_by_signature.
func ValidateDataURI(uri string) error {
	img, err := DecodeDataURI(uri)
	if err != nil {
		return err
	}
	if IsBlank(img) {
		return fmt.Errorf("signature image is blank")
	}
	return nil
}
