// Package filter applies the tone filters offered for scanned documents.
//
// Every filter takes any image.Image and returns a fresh 8-bit
// *image.NRGBA; the input is never modified. Parameters are validated up
// front so a bad request fails before any pixel work is done.
package filter

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/docscan-mcp/internal/apperr"
)

// Mode names a tone filter.
type Mode string

const (
	ModeNone          Mode = "none"
	ModeColor         Mode = "color" // alias for none
	ModeGrayscale     Mode = "grayscale"
	ModeBlackAndWhite Mode = "blackAndWhite"
	ModeCustom        Mode = "custom"
	ModeAdaptive      Mode = "adaptive"
	ModeAutomatic     Mode = "automatic" // alias for adaptive
	ModeShadows       Mode = "shadows"
)

// Tuning constants.
const (
	blackAndWhiteContrast = 1.5
	adaptiveBlurRadius    = 35
	adaptiveOffset        = 0.06
	shadowsOpacity        = 0.8
)

// Modes lists every accepted mode name.
var Modes = []Mode{
	ModeNone, ModeColor, ModeGrayscale, ModeBlackAndWhite,
	ModeCustom, ModeAdaptive, ModeAutomatic, ModeShadows,
}

// ParseMode resolves a mode name case-insensitively. An empty name is none.
func ParseMode(name string) (Mode, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ModeNone, nil
	}
	for _, m := range Modes {
		if strings.EqualFold(name, string(m)) {
			return m, nil
		}
	}
	return "", apperr.InvalidArgumentsf("unknown filter mode %q", name)
}

// canonical folds aliases onto the mode that implements them.
func (m Mode) canonical() Mode {
	switch m {
	case ModeColor, "":
		return ModeNone
	case ModeAutomatic:
		return ModeAdaptive
	}
	return m
}

// Spec selects a filter and its optional parameters. Brightness, Contrast
// and Threshold only affect ModeCustom.
type Spec struct {
	Mode Mode

	// Brightness is added after contrast, in units where 200 spans the full
	// intensity range. Default 0.
	Brightness *float64

	// Contrast multiplies intensity. Default 1; must not be negative.
	Contrast *float64

	// Threshold in [0,1] binarizes the result when set.
	Threshold *float64
}

// Validate checks the mode and parameter ranges.
func (s Spec) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	check := func(name string, v *float64) error {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return apperr.InvalidArgumentsf("%s must be a finite number", name)
		}
		return nil
	}
	if err := check("brightness", s.Brightness); err != nil {
		return err
	}
	if err := check("contrast", s.Contrast); err != nil {
		return err
	}
	if err := check("threshold", s.Threshold); err != nil {
		return err
	}
	if s.Contrast != nil && *s.Contrast < 0 {
		return apperr.InvalidArgumentsf("contrast must not be negative (got %v)", *s.Contrast)
	}
	if s.Threshold != nil && (*s.Threshold < 0 || *s.Threshold > 1) {
		return apperr.InvalidArgumentsf("threshold must be in [0,1] (got %v)", *s.Threshold)
	}
	return nil
}

// Apply runs the filter described by spec on img.
//
// Filters:
//   - none / color: unchanged copy
//   - grayscale: luminance replicated across RGB
//   - blackAndWhite: grayscale with contrast 1.5 around mid-grey
//   - custom: grayscale, then v·contrast + brightness/200·255, then an
//     optional binarization at the threshold
//   - adaptive / automatic: local-mean binarization; a pixel is white when
//     its luminance exceeds the Gaussian-blurred neighbourhood (radius 35)
//     minus 0.06
//   - shadows: grayscale blended over the colour image at 80% opacity
//
// Returns an INVALID_ARGUMENTS AppError when spec does not validate.
func Apply(img image.Image, spec Spec) (*image.NRGBA, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	mode, _ := ParseMode(string(spec.Mode))

	switch mode.canonical() {
	case ModeGrayscale:
		return imaging.Grayscale(img), nil
	case ModeBlackAndWhite:
		return blackAndWhite(img), nil
	case ModeCustom:
		return custom(img, spec), nil
	case ModeAdaptive:
		return adaptive(img), nil
	case ModeShadows:
		return shadows(img), nil
	default:
		return imaging.Clone(img), nil
	}
}

func blackAndWhite(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(imaging.Grayscale(img), func(c color.NRGBA) color.NRGBA {
		v := clamp8((float64(c.R)-127)*blackAndWhiteContrast + 127)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func custom(img image.Image, spec Spec) *image.NRGBA {
	contrast := 1.0
	if spec.Contrast != nil {
		contrast = *spec.Contrast
	}
	brightness := 0.0
	if spec.Brightness != nil {
		brightness = *spec.Brightness
	}
	offset := brightness / 200 * 255

	out := imaging.AdjustFunc(imaging.Grayscale(img), func(c color.NRGBA) color.NRGBA {
		v := clamp8(float64(c.R)*contrast + offset)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})

	if spec.Threshold == nil {
		return out
	}
	return imaging.Clone(segment.Threshold(out, thresholdLevel(*spec.Threshold)))
}

// thresholdLevel converts a [0,1] threshold to the 8-bit level at or above
// which pixels become white. It never exceeds 254 so that a threshold of 1
// still keeps pure white.
func thresholdLevel(t float64) uint8 {
	level := math.Ceil(t * 255)
	if level > 254 {
		level = 254
	}
	if level < 0 {
		level = 0
	}
	return uint8(level)
}

func adaptive(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	blurred := blur.Gaussian(gray, adaptiveBlurRadius)

	b := gray.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := gray.NRGBAAt(x, y)
			v := uint8(0)
			if luminance(g) > luminance(blurred.At(x, y))-adaptiveOffset {
				v = 255
			}
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: g.A})
		}
	}
	return out
}

// luminance returns Rec. 709 luma on a 0-1 scale.
func luminance(c color.Color) float64 {
	col, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	return 0.2126*col.R + 0.7152*col.G + 0.0722*col.B
}

func shadows(img image.Image) *image.NRGBA {
	return imaging.Overlay(img, imaging.Grayscale(img), image.Pt(0, 0), shadowsOpacity)
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
