//go:build !nogpu

package gpu

import (
	"errors"
	"slices"

	"github.com/gogpu/gputypes"
)

// ErrNoFormats is returned when a surface reports no supported formats.
var ErrNoFormats = errors.New("gpu: surface reports no formats")

// srgbSibling maps linear 8-bit formats to their sRGB variants.
var srgbSibling = map[gputypes.TextureFormat]gputypes.TextureFormat{
	gputypes.TextureFormatRGBA8Unorm: gputypes.TextureFormatRGBA8UnormSrgb,
	gputypes.TextureFormatBGRA8Unorm: gputypes.TextureFormatBGRA8UnormSrgb,
}

// ChooseSurfaceFormat picks the render target format from a surface's
// supported formats, listed in the surface's order of preference. A linear
// preferred format is upgraded to its sRGB sibling when that is listed too;
// otherwise the first sRGB format wins, and failing that the preferred
// format is used as is.
func ChooseSurfaceFormat(formats []gputypes.TextureFormat) (gputypes.TextureFormat, error) {
	if len(formats) == 0 {
		return gputypes.TextureFormatUndefined, ErrNoFormats
	}
	preferred := formats[0]
	if preferred.IsSrgb() {
		return preferred, nil
	}
	if s, ok := srgbSibling[preferred]; ok && slices.Contains(formats, s) {
		return s, nil
	}
	for _, f := range formats {
		if f.IsSrgb() {
			return f, nil
		}
	}
	return preferred, nil
}
