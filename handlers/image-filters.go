package handler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/disintegration/gift"
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/storage"
	_ "golang.org/x/image/webp"
)

const (
	DefaultThumbSize = 256
	MaxThumbSize     = 1024
	MaxSourcePixels  = 100_000_000
	JPEGQuality      = 90
	MaxBlurRadius    = 50
	MaxBrightness    = 100
	MaxContrast      = 100
	MaxSaturation    = 200
)

// Optional adjustments applied after resizing, in this order.
var supportedFilters = []string{
	"rotate",
	"brightness",
	"contrast",
	"saturation",
	"gaussian_blur",
	"grayscale",
	"invert",
}

// Formats the decoder has been registered for; HEIC is stored but cannot be
// rendered.
var decodableExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

type FilterError struct {
	FilterName string
	Message    string
}

func (e FilterError) Error() string {
	return fmt.Sprintf("filter '%s': %s", e.FilterName, e.Message)
}

func parseIntParam(param, paramName string, min, max int) (int, error) {
	value, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%s must be between %d and %d", paramName, min, max)
	}
	return value, nil
}

func parseFloatParam(param, paramName string, min, max float32) (float32, error) {
	value, err := strconv.ParseFloat(param, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", paramName)
	}

	floatVal := float32(value)
	if floatVal < min || floatVal > max {
		return 0, fmt.Errorf("%s must be between %.1f and %.1f", paramName, min, max)
	}
	return floatVal, nil
}

func createFilter(filterName, param string) (gift.Filter, error) {
	switch filterName {
	case "rotate":
		switch param {
		case "90":
			return gift.Rotate90(), nil
		case "180":
			return gift.Rotate180(), nil
		case "270":
			return gift.Rotate270(), nil
		}
		degree, err := parseFloatParam(param, "rotation angle", -360, 360)
		if err != nil {
			return nil, FilterError{filterName, err.Error()}
		}
		return gift.Rotate(degree, color.Transparent, gift.CubicInterpolation), nil

	case "brightness":
		value, err := parseFloatParam(param, "brightness", -MaxBrightness, MaxBrightness)
		if err != nil {
			return nil, FilterError{filterName, err.Error()}
		}
		return gift.Brightness(value), nil

	case "contrast":
		value, err := parseFloatParam(param, "contrast", -MaxContrast, MaxContrast)
		if err != nil {
			return nil, FilterError{filterName, err.Error()}
		}
		return gift.Contrast(value), nil

	case "saturation":
		value, err := parseFloatParam(param, "saturation", -100, MaxSaturation)
		if err != nil {
			return nil, FilterError{filterName, err.Error()}
		}
		return gift.Saturation(value), nil

	case "gaussian_blur":
		value, err := parseFloatParam(param, "blur radius", 0.1, MaxBlurRadius)
		if err != nil {
			return nil, FilterError{filterName, err.Error()}
		}
		return gift.GaussianBlur(value), nil

	case "grayscale":
		return gift.Grayscale(), nil

	case "invert":
		return gift.Invert(), nil

	default:
		return nil, FilterError{filterName, "unsupported filter"}
	}
}

// parseThumbnailFilters builds the filter chain: fit into size x size first,
// then whatever adjustments the query asks for.
func parseThumbnailFilters(query map[string]string) ([]gift.Filter, error) {
	size := DefaultThumbSize
	if raw, ok := query["size"]; ok {
		v, err := parseIntParam(raw, "size", 16, MaxThumbSize)
		if err != nil {
			return nil, FilterError{"size", err.Error()}
		}
		size = v
	}

	filters := []gift.Filter{gift.ResizeToFit(size, size, gift.LanczosResampling)}
	for _, name := range supportedFilters {
		param, ok := query[name]
		if !ok {
			continue
		}
		filter, err := createFilter(name, param)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}
	return filters, nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width*cfg.Height > MaxSourcePixels {
		return nil, fmt.Errorf("image too large (%dx%d)", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func processImage(src image.Image, filters []gift.Filter) image.Image {
	g := gift.New(filters...)
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail renders a scaled JPEG preview of a stored photo. Query
// parameters: size (longest edge) plus the adjustments in supportedFilters.
func (h *Handler) Thumbnail(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	filters, err := parseThumbnailFilters(c.Queries())
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	photo, err := h.photos.FindByID(c.UserContext(), id, p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	if !access.OwnerOnly(p, photo.UserID).Allowed() {
		return fail(c, fiber.StatusNotFound, photoNotFoundDenied)
	}

	ext := strings.TrimPrefix(path.Ext(photo.Filepath), ".")
	if !decodableExtensions[ext] {
		return fail(c, fiber.StatusUnsupportedMediaType, "Thumbnail not available for this file type")
	}

	rc, err := h.store.Open(c.UserContext(), photo.Filepath)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, photoNotFoundDenied)
	}
	if err != nil {
		return failErr(c, apperr.Storage("open photo file", err))
	}
	defer rc.Close()

	img, err := decodeImage(rc)
	if err != nil {
		return failErr(c, apperr.Storage("load photo", err))
	}

	out, err := encodeImage(processImage(img, filters))
	if err != nil {
		return failErr(c, apperr.Storage("encode thumbnail", err))
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(out)
}
