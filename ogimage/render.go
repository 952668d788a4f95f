package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Card dimensions in pixels.
const (
	Width  = 1200
	Height = 630
)

const (
	margin       = 80
	logoHeight   = 64
	portraitSize = 96
	titleSize    = 52
	titleLeading = 62
	bodySize     = 26
	bodyLeading  = 36
	maxLines     = 3
)

var (
	background = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	accent     = color.RGBA{0x38, 0xbd, 0xf8, 0xff}
	foreground = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	muted      = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
)

// Card is the text drawn on a preview image.
type Card struct {
	Title    string
	Excerpt  string
	Author   string
	Date     time.Time
	Category string
}

// Renderer draws cards with one set of Assets.
type Renderer struct {
	assets *Assets
}

// NewRenderer returns a Renderer drawing with a.
func NewRenderer(a *Assets) *Renderer {
	return &Renderer{assets: a}
}

type faces struct {
	label, title, body, author, date font.Face
}

func (f faces) Close() {
	for _, face := range []font.Face{f.label, f.title, f.body, f.author, f.date} {
		if face != nil {
			face.Close()
		}
	}
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// newFaces creates faces for one render; faces are not safe for
// concurrent use.
func (r *Renderer) newFaces() (faces, error) {
	var (
		f   faces
		err error
	)
	specs := []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&f.label, r.assets.Bold, 26},
		{&f.title, r.assets.Bold, titleSize},
		{&f.body, r.assets.Regular, bodySize},
		{&f.author, r.assets.Bold, 28},
		{&f.date, r.assets.Regular, 22},
	}
	for _, s := range specs {
		if *s.dst, err = newFace(s.font, s.size); err != nil {
			f.Close()
			return faces{}, fmt.Errorf("ogimage: create face: %w", err)
		}
	}
	return f, nil
}

// Render draws card onto a new Width x Height image.
func (r *Renderer) Render(card Card) (image.Image, error) {
	if r.assets == nil || r.assets.Regular == nil || r.assets.Bold == nil {
		return nil, ErrAssets
	}
	f, err := r.newFaces()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, 12, Height), image.NewUniform(accent), image.Point{}, draw.Src)

	x := margin
	if r.assets.Logo != nil {
		x += drawLogo(img, r.assets.Logo, image.Pt(margin, 56)) + 24
	}
	if card.Category != "" {
		drawText(img, f.label, accent, x, 56+logoHeight/2+10, strings.ToUpper(card.Category))
	}

	textWidth := Width - 2*margin
	y := 200
	for _, line := range Wrap(f.title, card.Title, textWidth, maxLines) {
		drawText(img, f.title, foreground, margin, y, line)
		y += titleLeading
	}
	y += 10
	for _, line := range Wrap(f.body, TruncateExcerpt(card.Excerpt), textWidth, maxLines) {
		drawText(img, f.body, muted, margin, y, line)
		y += bodyLeading
	}

	footer := Height - 40 - portraitSize
	x = margin
	if r.assets.Portrait != nil {
		drawPortrait(img, r.assets.Portrait, image.Pt(margin, footer))
		x += portraitSize + 24
	}
	drawText(img, f.author, foreground, x, footer+42, card.Author)
	if !card.Date.IsZero() {
		drawText(img, f.date, muted, x, footer+78, card.Date.Format("January 2, 2006"))
	}
	return img, nil
}

// RenderPNG renders card and returns it PNG-encoded.
func (r *Renderer) RenderPNG(card Card) ([]byte, error) {
	img, err := r.Render(card)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes img to w as PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("ogimage: encode png: %w", err)
	}
	return nil
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	if s == "" {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawLogo scales logo to logoHeight, keeping its aspect ratio, and
// returns the drawn width.
func drawLogo(dst draw.Image, logo image.Image, at image.Point) int {
	b := logo.Bounds()
	if b.Dy() == 0 {
		return 0
	}
	w := b.Dx() * logoHeight / b.Dy()
	draw.CatmullRom.Scale(dst, image.Rect(at.X, at.Y, at.X+w, at.Y+logoHeight), logo, b, draw.Over, nil)
	return w
}

// drawPortrait crops the portrait to a square and draws it as a circle.
func drawPortrait(dst draw.Image, portrait image.Image, at image.Point) {
	square := imaging.Fill(portrait, portraitSize, portraitSize, imaging.Center, imaging.Lanczos)
	rect := image.Rect(at.X, at.Y, at.X+portraitSize, at.Y+portraitSize)
	draw.DrawMask(dst, rect, square, image.Point{}, circle{r: portraitSize / 2}, image.Point{}, draw.Over)
}

// circle is an alpha mask of a disc of radius r anchored at the origin.
type circle struct {
	r int
}

func (c circle) ColorModel() color.Model {
	return color.AlphaModel
}

func (c circle) Bounds() image.Rectangle {
	return image.Rect(0, 0, 2*c.r, 2*c.r)
}

func (c circle) At(x, y int) color.Color {
	dx, dy := float64(x-c.r)+0.5, float64(y-c.r)+0.5
	if dx*dx+dy*dy <= float64(c.r*c.r) {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
