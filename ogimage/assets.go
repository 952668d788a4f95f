// Package ogimage draws the 1200x630 Open Graph preview cards shown when a
// post is shared on social networks.
package ogimage

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrAssets is returned when a configured font or image cannot be loaded.
var ErrAssets = errors.New("ogimage: assets unavailable")

// Paths locates the files a card is drawn with. Empty font paths fall back
// to the Go fonts; an empty image path leaves that element off the card.
type Paths struct {
	FontRegular string
	FontBold    string
	Logo        string
	Portrait    string
}

// Assets are the decoded fonts and images. They are immutable once loaded
// and may be shared by concurrent renders.
type Assets struct {
	Regular  *opentype.Font
	Bold     *opentype.Font
	Logo     image.Image
	Portrait image.Image
}

// LoadAssets reads and decodes everything named in p.
func LoadAssets(p Paths) (*Assets, error) {
	regular, err := loadFont(p.FontRegular, goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := loadFont(p.FontBold, gobold.TTF)
	if err != nil {
		return nil, err
	}
	logo, err := loadImage(p.Logo)
	if err != nil {
		return nil, err
	}
	portrait, err := loadImage(p.Portrait)
	if err != nil {
		return nil, err
	}
	return &Assets{Regular: regular, Bold: bold, Logo: logo, Portrait: portrait}, nil
}

func loadFont(path string, fallback []byte) (*opentype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAssets, err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font %q: %w", ErrAssets, path, err)
	}
	return f, nil
}

func loadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssets, err)
	}
	return img, nil
}

// Loader loads Assets at most once per process. A failed load is
// remembered and returned to every caller.
type Loader struct {
	paths  Paths
	once   sync.Once
	assets *Assets
	err    error
}

// NewLoader returns a Loader for p. Nothing is read until Load is called.
func NewLoader(p Paths) *Loader {
	return &Loader{paths: p}
}

// Load returns the shared Assets.
func (l *Loader) Load() (*Assets, error) {
	l.once.Do(func() {
		l.assets, l.err = LoadAssets(l.paths)
	})
	return l.assets, l.err
}
