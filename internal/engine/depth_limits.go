package engine

// Depth caps. The ceilings are hard: configuration may lower them but
// never raise them.
const (
	DefaultClassifyDepth = 3
	MaxClassifyDepth     = 6
	DefaultResolveDepth  = 10
	MaxResolveDepth      = 15
)

// DepthLimits bounds the max depth accepted by one operation.
type DepthLimits struct {
	// Default is used when the caller does not request a depth.
	Default int

	// Ceiling is the largest depth a caller may request.
	Ceiling int
}

// ClassifyLimits returns the built-in limits for depth classification.
func ClassifyLimits() DepthLimits {
	return DepthLimits{Default: DefaultClassifyDepth, Ceiling: MaxClassifyDepth}
}

// ResolveLimits returns the built-in limits for path resolution.
func ResolveLimits() DepthLimits {
	return DepthLimits{Default: DefaultResolveDepth, Ceiling: MaxResolveDepth}
}

// Normalize clamps l against builtin: a missing or too-large ceiling becomes
// the builtin ceiling, and a missing or out-of-range default falls back to
// the builtin default capped at the ceiling.
func (l *DepthLimits) Normalize(builtin DepthLimits) {
	if l.Ceiling <= 0 || l.Ceiling > builtin.Ceiling {
		l.Ceiling = builtin.Ceiling
	}
	if l.Default <= 0 {
		l.Default = builtin.Default
	}
	if l.Default > l.Ceiling {
		l.Default = l.Ceiling
	}
}

// Resolve returns the depth to use for a request. A nil request selects the
// default; values outside [1, Ceiling] are rejected with ErrInvalidDepth.
func (l DepthLimits) Resolve(requested *int) (int, error) {
	if requested == nil {
		return l.Default, nil
	}
	if *requested <= 0 || *requested > l.Ceiling {
		return 0, invalidDepthError(*requested, l.Ceiling)
	}
	return *requested, nil
}
