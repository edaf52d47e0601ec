package frost

import (
	"math"

	"github.com/go-drift/frost/pkg/blur"
	"github.com/go-drift/frost/pkg/errors"
	"github.com/go-drift/frost/pkg/graphics"
)

// Default configuration values.
const (
	DefaultBlurRadius      = 16.0
	DefaultOverlayColor    = graphics.Color(0x04000000)
	DefaultDownscaleFactor = 4.0
	DefaultCornerRadius    = 0.0
)

// Config holds the per-instance blur settings. It is fixed at construction.
type Config struct {
	// BlurRadius is the blur radius in capture-buffer pixels. Zero disables
	// capturing entirely; the view then paints only its tint.
	BlurRadius float64
	// OverlayColor is the tint painted over the blurred image.
	OverlayColor graphics.Color
	// DownscaleFactor divides both capture dimensions. Must be >= 1.
	DownscaleFactor float64
	// CornerRadius rounds the corners of the composited result, in device units.
	CornerRadius float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BlurRadius:      DefaultBlurRadius,
		OverlayColor:    DefaultOverlayColor,
		DownscaleFactor: DefaultDownscaleFactor,
		CornerRadius:    DefaultCornerRadius,
	}
}

// Validate rejects values that would break the pipeline at draw time.
// The returned error wraps errors.ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !finite(c.BlurRadius) || c.BlurRadius < 0:
		return &errors.ConfigError{Field: "blurRadius", Value: c.BlurRadius, Reason: "must be finite and >= 0"}
	case !finite(c.DownscaleFactor) || c.DownscaleFactor < 1:
		return &errors.ConfigError{Field: "downscaleFactor", Value: c.DownscaleFactor, Reason: "must be finite and >= 1"}
	case !finite(c.CornerRadius) || c.CornerRadius < 0:
		return &errors.ConfigError{Field: "cornerRadius", Value: c.CornerRadius, Reason: "must be finite and >= 0"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type settings struct {
	config Config
	engine blur.Engine
}

// Option configures a BlurView at construction.
type Option func(*settings)

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(s *settings) { s.config = c }
}

// WithBlurRadius sets the blur radius.
func WithBlurRadius(radius float64) Option {
	return func(s *settings) { s.config.BlurRadius = radius }
}

// WithOverlayColor sets the tint color.
func WithOverlayColor(c graphics.Color) Option {
	return func(s *settings) { s.config.OverlayColor = c }
}

// WithDownscaleFactor sets the capture resolution divisor.
func WithDownscaleFactor(factor float64) Option {
	return func(s *settings) { s.config.DownscaleFactor = factor }
}

// WithCornerRadius sets the corner radius.
func WithCornerRadius(radius float64) Option {
	return func(s *settings) { s.config.CornerRadius = radius }
}

// WithEngine replaces the blur engine. Nil keeps the default box engine.
func WithEngine(e blur.Engine) Option {
	return func(s *settings) {
		if e != nil {
			s.engine = e
		}
	}
}
