package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
)

const (
	cellW = 8
	cellH = 16
)

// Recorder collects canvas snapshots as paletted GIF frames.
type Recorder struct {
	frames []*image.Paletted
	delay  int // hundredths of a second
}

func NewRecorder(delay int) *Recorder {
	return &Recorder{delay: max(1, delay)}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterises every lit braille dot as a white block.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), color.Palette{color.Black, color.White})
	dotW, dotH := cellW/2, cellH/4
	for y := 0; y < c.Height*4; y++ {
		for x := 0; x < c.Width*2; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Encode writes the collected frames as a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}
