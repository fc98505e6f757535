package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
)

const (
	recordCharW = 8
	recordCharH = 16
	maxRecorded = 1800
)

// Recorder rasterises canvas frames for an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	delay  int // hundredths of a second between frames
}

func NewRecorder(fps int) *Recorder {
	return &Recorder{delay: max(1, 100/max(fps, 1))}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture appends the current canvas as a two-colour frame. Frames beyond the
// cap are dropped.
func (r *Recorder) Capture(c *Canvas) {
	if len(r.frames) >= maxRecorded {
		return
	}
	img := image.NewPaletted(
		image.Rect(0, 0, c.Width*recordCharW, c.Height*recordCharH),
		color.Palette{color.Black, color.White},
	)
	dotW, dotH := recordCharW/2, recordCharH/4
	w, h := c.Dims()
	for y := range h {
		for x := range w {
			if !c.IsSet(x, y) {
				continue
			}
			for py := range dotH {
				for px := range dotW {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) WriteGIF(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save writes the recording to path and clears it.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.WriteGIF(f); err != nil {
		return err
	}
	r.frames = r.frames[:0]
	return nil
}
