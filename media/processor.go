package media

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"io"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const PlaceholderFileExtension = ".jpg"

var (
	// ErrInvalidDimensions is returned for non-positive or oversized placeholder requests.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrNotCached means the placeholder is not kept in the store and must be rendered with Render.
	ErrNotCached = errors.New("placeholder not cached")
)

const lockStripes = 64

// placeholders are named by a name-based UUID of their parameters, so the same request always
// maps to the same file.
var placeholderNamespace = uuid.MustParse("6f1c2d4e-8a0b-4c5d-9e7f-3a2b1c0d9e8f")

// Processor renders placeholder images. Only the configured sizes are cached in the Store, up to
// CacheLimit files.
type Processor struct {
	store Store
	opts  PlaceholderOptions

	from, to, ink color.NRGBA
	cacheSizes    map[image.Point]bool

	locks  [lockStripes]sync.Mutex // by filename hash
	mu     sync.Mutex
	stored int
}

func NewProcessor(store Store, opts PlaceholderOptions) (*Processor, error) {
	p := &Processor{store: store, opts: opts}
	var err error
	if p.from, err = parseHexColor(opts.From); err != nil {
		return nil, err
	}
	if p.to, err = parseHexColor(opts.To); err != nil {
		return nil, err
	}
	if p.ink, err = parseHexColor(opts.TextColor); err != nil {
		return nil, err
	}
	if p.opts.ScaleFactor <= 0 {
		p.opts.ScaleFactor = 4
	}
	if len(opts.CacheSizes) > 0 {
		p.cacheSizes = make(map[image.Point]bool, len(opts.CacheSizes))
		for _, size := range opts.CacheSizes {
			p.cacheSizes[size] = true
		}
	}
	if p.stored, err = store.Count(AssetTypePlaceholder); err != nil {
		return nil, err
	}
	return p, nil
}

// PlaceholderURL is the API route that serves a placeholder of the given size and caption.
func PlaceholderURL(width, height int, text string) string {
	u := fmt.Sprintf("/api/placeholder/%d/%d", width, height)
	if text != "" {
		u += "?text=" + url.QueryEscape(text)
	}
	return u
}

// normalizeText trims the caption and cuts it to MaxTextLen runes.
func (p *Processor) normalizeText(text string) string {
	text = strings.TrimSpace(text)
	if r := []rune(text); p.opts.MaxTextLen > 0 && len(r) > p.opts.MaxTextLen {
		text = string(r[:p.opts.MaxTextLen])
	}
	return text
}

// PlaceholderName is the cache filename for a placeholder request.
func (p *Processor) PlaceholderName(width, height int, text string) string {
	key := fmt.Sprintf("%dx%d|%s", width, height, p.normalizeText(text))
	return uuid.NewSHA1(placeholderNamespace, []byte(key)).String() + PlaceholderFileExtension
}

func (p *Processor) checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > p.opts.MaxSize || height > p.opts.MaxSize {
		return fmt.Errorf("%w: %dx%d (max %d)", ErrInvalidDimensions, width, height, p.opts.MaxSize)
	}
	return nil
}

// Cacheable reports whether placeholders of this size are kept in the store.
func (p *Processor) Cacheable(width, height int) bool {
	return p.cacheSizes == nil || p.cacheSizes[image.Pt(width, height)]
}

func (p *Processor) lockFor(filename string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(filename))
	return &p.locks[h.Sum32()%lockStripes]
}

// reserve claims a slot in the store for a new placeholder.
func (p *Processor) reserve() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opts.CacheLimit > 0 && p.stored >= p.opts.CacheLimit {
		return false
	}
	p.stored++
	return true
}

func (p *Processor) unreserve() {
	p.mu.Lock()
	p.stored--
	p.mu.Unlock()
}

// Stored is the number of placeholders currently in the store.
func (p *Processor) Stored() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored
}

// Placeholder returns the stored path of a width x height placeholder captioned with text,
// rendering it on first use. cached reports whether it was already stored. Sizes outside
// CacheSizes, and new placeholders once the store is full, fail with ErrNotCached.
func (p *Processor) Placeholder(width, height int, text string) (relPath string, cached bool, err error) {
	if err := p.checkSize(width, height); err != nil {
		return "", false, err
	}
	if !p.Cacheable(width, height) {
		return "", false, fmt.Errorf("%w: %dx%d is rendered per request", ErrNotCached, width, height)
	}
	text = p.normalizeText(text)
	filename := p.PlaceholderName(width, height, text)

	relPath, err = p.store.RelativePath(AssetTypePlaceholder, filename)
	if err != nil {
		return "", false, err
	}

	mu := p.lockFor(filename)
	mu.Lock()
	defer mu.Unlock()

	if p.store.Exists(relPath) {
		return relPath, true, nil
	}
	if !p.reserve() {
		return "", false, fmt.Errorf("%w: store holds %d placeholders", ErrNotCached, p.opts.CacheLimit)
	}

	img := p.render(width, height, text)

	reader, writer := io.Pipe()
	go func() {
		defer writer.Close()
		err := imaging.Encode(writer, img, imaging.JPEG, imaging.JPEGQuality(p.opts.Quality))
		if err != nil {
			log.Printf("processor: failed to encode placeholder: %v", err)
			writer.CloseWithError(fmt.Errorf("placeholder encoding failed: %w", err))
		}
	}()

	savedRelPath, err := p.store.Save(AssetTypePlaceholder, filename, reader)
	if err != nil {
		reader.Close()
		p.unreserve()
		return "", false, fmt.Errorf("failed to save placeholder via store: %w", err)
	}

	log.Printf("processor: rendered %dx%d placeholder %q at %s", width, height, text, savedRelPath)
	return savedRelPath, false, nil
}

// Render encodes a placeholder straight to w without touching the store.
func (p *Processor) Render(w io.Writer, width, height int, text string) error {
	if err := p.checkSize(width, height); err != nil {
		return err
	}
	img := p.render(width, height, p.normalizeText(text))
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(p.opts.Quality)); err != nil {
		return fmt.Errorf("placeholder encoding failed: %w", err)
	}
	return nil
}

// render paints a top-left to bottom-right gradient and centres the caption on it. The caption
// is drawn with the fixed 7x13 face and scaled up so its height is min(width, height)/ScaleFactor.
func (p *Processor) render(width, height int, text string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	span := float64(width - 1 + height - 1)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			t := 0.0
			if span > 0 {
				t = float64(x+y) / span
			}
			i := x * 4
			row[i+0] = lerp(p.from.R, p.to.R, t)
			row[i+1] = lerp(p.from.G, p.to.G, t)
			row[i+2] = lerp(p.from.B, p.to.B, t)
			row[i+3] = 0xff
		}
	}

	if text == "" {
		return img
	}

	label := drawLabel(text, p.ink)
	targetHeight := maxInt(1, minInt(width, height)/p.opts.ScaleFactor)
	scaled := imaging.Resize(label, 0, targetHeight, imaging.NearestNeighbor)
	if scaled.Bounds().Dx() > width {
		scaled = imaging.Resize(label, width, 0, imaging.NearestNeighbor)
	}
	pos := image.Pt((width-scaled.Bounds().Dx())/2, (height-scaled.Bounds().Dy())/2)
	return imaging.Overlay(img, scaled, pos, 1.0)
}

func drawLabel(text string, ink color.Color) *image.NRGBA {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face, Src: image.NewUniform(ink)}
	w := d.MeasureString(text).Ceil()
	dst := image.NewNRGBA(image.Rect(0, 0, maxInt(1, w), face.Ascent+face.Descent))
	d.Dst = dst
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(text)
	return dst
}
