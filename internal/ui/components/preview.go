package components

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"
)

// ramp maps luminance to characters, darkest first
const ramp = " .:-=+*#%@"

// ImagePreview is a character thumbnail of a selected image
type ImagePreview struct {
	Format string
	Width  int
	Height int
	Lines  []string
}

// NewImagePreview decodes data and scales it to at most cols characters wide
// and rows characters high, keeping the aspect ratio of a terminal cell.
func NewImagePreview(data []byte, cols, rows int) (*ImagePreview, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	p := &ImagePreview{Format: format, Width: bounds.Dx(), Height: bounds.Dy()}
	if cols < 1 || rows < 1 || p.Width == 0 || p.Height == 0 {
		return p, nil
	}

	// Cells are roughly twice as tall as they are wide
	w := cols
	h := int(float64(p.Height) / float64(p.Width) * float64(w) / 2)
	if h > rows {
		h = rows
		w = int(float64(p.Width) / float64(p.Height) * float64(h) * 2)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	small := resize.Resize(uint(w), uint(h), img, resize.Bilinear)
	sb := small.Bounds()
	p.Lines = make([]string, 0, sb.Dy())
	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		var line strings.Builder
		for x := sb.Min.X; x < sb.Max.X; x++ {
			line.WriteByte(shade(small.At(x, y)))
		}
		p.Lines = append(p.Lines, line.String())
	}
	return p, nil
}

func shade(c color.Color) byte {
	g := color.GrayModel.Convert(c).(color.Gray)
	return ramp[int(g.Y)*(len(ramp)-1)/255]
}

// Dimensions returns e.g. "1024x768 png"
func (p *ImagePreview) Dimensions() string {
	return fmt.Sprintf("%dx%d %s", p.Width, p.Height, p.Format)
}

// Render returns the thumbnail text
func (p *ImagePreview) Render() string {
	return strings.Join(p.Lines, "\n")
}
