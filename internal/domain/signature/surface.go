package signature

// Default logical dimensions of the signature surface. These match the
// canvas the admission form renders.
const (
	DefaultWidth  = 450
	DefaultHeight = 200
)

// State describes where the surface is in its capture lifecycle.
type State int

const (
	StateEmpty State = iota
	StateDrawing
	StateCaptured
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDrawing:
		return "drawing"
	case StateCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

// SignatureRequiredError is returned when Save is invoked on an empty
// surface. The caller is expected to block the save action and surface
// this to the user instead of persisting an empty image.
type SignatureRequiredError struct{}

func (e *SignatureRequiredError) Error() string {
	return "signature required: drawing surface is empty"
}

// Point is a single pointer sample in surface coordinates.
type Point struct {
	X float64
	Y float64
}

// Stroke is one continuous pointer-down..pointer-up gesture.
type Stroke []Point

// Surface is a bounded freehand drawing surface. It accumulates strokes
// from pointer events and produces an immutable PNG data URI on Save.
// The surface owns all drawing state; callers only ever receive the
// encoded value.
type Surface struct {
	width   int
	height  int
	strokes []Stroke
	current Stroke
	encoded string // cached capture, invalidated by new strokes or Clear
	state   State
}

// NewSurface creates a surface with the given logical dimensions.
// Non-positive dimensions fall back to the defaults.
func NewSurface(width, height int) *Surface {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Surface{width: width, height: height, state: StateEmpty}
}

// Width returns the surface width in logical units.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in logical units.
func (s *Surface) Height() int { return s.height }

// State reports the current lifecycle state.
func (s *Surface) State() State { return s.state }

// Empty reports whether the surface holds no strokes.
func (s *Surface) Empty() bool {
	return len(s.strokes) == 0 && len(s.current) == 0
}

// StrokeStart begins a new stroke at the given position (pointer down).
// An unfinished stroke is implicitly ended first.
func (s *Surface) StrokeStart(x, y float64) {
	s.StrokeEnd()
	s.current = Stroke{s.clamp(x, y)}
	s.dirty()
}

// StrokeTo extends the in-progress stroke (pointer move). Without a
// preceding StrokeStart it starts a new stroke.
func (s *Surface) StrokeTo(x, y float64) {
	if len(s.current) == 0 {
		s.StrokeStart(x, y)
		return
	}
	s.current = append(s.current, s.clamp(x, y))
	s.dirty()
}

// StrokeEnd finishes the in-progress stroke (pointer up). It is a no-op
// when no stroke is in progress.
func (s *Surface) StrokeEnd() {
	if len(s.current) == 0 {
		return
	}
	s.strokes = append(s.strokes, s.current)
	s.current = nil
}

// Clear discards all strokes and any captured encoding, returning the
// surface to its initial empty state.
func (s *Surface) Clear() {
	s.strokes = nil
	s.current = nil
	s.encoded = ""
	s.state = StateEmpty
}

// Save captures the current drawing as a PNG data URI and transitions
// the surface to the captured state. Saving an empty surface fails with
// *SignatureRequiredError. Saving twice without intervening strokes
// returns byte-identical output: the render and encode are fully
// deterministic and the first capture is cached until the surface is
// drawn on again.
func (s *Surface) Save() (string, error) {
	if s.Empty() {
		return "", &SignatureRequiredError{}
	}
	if s.encoded != "" {
		return s.encoded, nil
	}
	s.StrokeEnd()
	encoded, err := encodeStrokes(s.width, s.height, s.strokes)
	if err != nil {
		return "", err
	}
	s.encoded = encoded
	s.state = StateCaptured
	return encoded, nil
}

func (s *Surface) dirty() {
	s.encoded = ""
	s.state = StateDrawing
}

func (s *Surface) clamp(x, y float64) Point {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if max := float64(s.width - 1); x > max {
		x = max
	}
	if max := float64(s.height - 1); y > max {
		y = max
	}
	return Point{X: x, Y: y}
}
