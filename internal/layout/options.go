package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDimension wraps every Dimension construction failure.
var ErrInvalidDimension = errors.New("invalid dimension")

// DimensionKind tags a Dimension value.
type DimensionKind int

const (
	Percentage DimensionKind = iota + 1
	Pixels
)

// Dimension is a length given either in pixels or as a percentage of a
// reference length. The zero value is unset.
type Dimension struct {
	kind  DimensionKind
	value float64
}

// Percent returns a percentage dimension; value must be in (0,100].
func Percent(value float64) (Dimension, error) {
	if !(value > 0 && value <= 100) {
		return Dimension{}, fmt.Errorf("%w: percentage must be in (0,100], got %g", ErrInvalidDimension, value)
	}
	return Dimension{kind: Percentage, value: value}, nil
}

// Px returns a pixel dimension; value must be positive.
func Px(value int) (Dimension, error) {
	if value <= 0 {
		return Dimension{}, fmt.Errorf("%w: pixel size must be positive, got %d", ErrInvalidDimension, value)
	}
	return Dimension{kind: Pixels, value: float64(value)}, nil
}

// ParseDimension accepts "80%", "640px" or a bare pixel count "640".
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return Dimension{}, fmt.Errorf("%w: empty", ErrInvalidDimension)
	case strings.HasSuffix(s, "%"):
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return Dimension{}, fmt.Errorf("%w: bad percentage %q", ErrInvalidDimension, s)
		}
		return Percent(v)
	default:
		v, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "px")))
		if err != nil {
			return Dimension{}, fmt.Errorf("%w: bad pixel size %q", ErrInvalidDimension, s)
		}
		return Px(v)
	}
}

// IsSet reports whether the dimension holds a value.
func (d Dimension) IsSet() bool { return d.kind != 0 }

// IsZero lets yaml omitempty drop unset dimensions.
func (d Dimension) IsZero() bool { return d.kind == 0 }

// Kind returns the dimension's tag.
func (d Dimension) Kind() DimensionKind { return d.kind }

// Value returns the raw value.
func (d Dimension) Value() float64 { return d.value }

// Resolve converts d against a reference length, flooring percentages.
// An unset dimension resolves to fallback percent of ref.
func (d Dimension) Resolve(ref int, fallbackPercent float64) int {
	switch d.kind {
	case Pixels:
		return int(d.value)
	case Percentage:
		return int(float64(ref) * d.value / 100)
	}
	return int(float64(ref) * fallbackPercent / 100)
}

func (d Dimension) String() string {
	switch d.kind {
	case Pixels:
		return strconv.Itoa(int(d.value)) + "px"
	case Percentage:
		return strconv.FormatFloat(d.value, 'f', -1, 64) + "%"
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text leaves the
// dimension unset.
func (d *Dimension) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*d = Dimension{}
		return nil
	}
	parsed, err := ParseDimension(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Anchor positions a stacked window within the screen.
type Anchor string

const (
	AnchorCenter Anchor = "center"
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
)

// Valid reports whether a is one of the known anchors.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorCenter, AnchorLeft, AnchorRight:
		return true
	}
	return false
}

type CascadeOptions struct {
	OffsetX int `yaml:"offset_x" json:"offset_x"`
	OffsetY int `yaml:"offset_y" json:"offset_y"`
}

type GridOptions struct {
	// Columns of zero picks floor(sqrt(n))+1.
	Columns int `yaml:"columns,omitempty" json:"columns,omitempty"`
	Padding int `yaml:"padding" json:"padding"`
}

type StackOptions struct {
	Position Anchor    `yaml:"position" json:"position"`
	Width    Dimension `yaml:"width,omitempty" json:"width,omitempty"`
	Height   Dimension `yaml:"height,omitempty" json:"height,omitempty"`
}

// Options carries per-variant parameters. Each variant reads only its own
// section.
type Options struct {
	Cascade CascadeOptions `yaml:"cascade" json:"cascade"`
	Grid    GridOptions    `yaml:"grid" json:"grid"`
	Stack   StackOptions   `yaml:"stack" json:"stack"`
}

// DefaultOptions returns the stock parameters.
func DefaultOptions() Options {
	return Options{
		Cascade: CascadeOptions{OffsetX: 30, OffsetY: 30},
		Grid:    GridOptions{Padding: 10},
		Stack:   StackOptions{Position: AnchorCenter},
	}
}

// Validate rejects parameters the geometry formulas cannot accept.
func (o Options) Validate() error {
	var errs []error
	if o.Cascade.OffsetX < 0 || o.Cascade.OffsetY < 0 {
		errs = append(errs, fmt.Errorf("cascade offsets must be >= 0, got %d,%d", o.Cascade.OffsetX, o.Cascade.OffsetY))
	}
	if o.Grid.Columns < 0 {
		errs = append(errs, fmt.Errorf("grid columns must be > 0 when set, got %d", o.Grid.Columns))
	}
	if o.Grid.Padding < 0 {
		errs = append(errs, fmt.Errorf("grid padding must be >= 0, got %d", o.Grid.Padding))
	}
	if o.Stack.Position != "" && !o.Stack.Position.Valid() {
		errs = append(errs, fmt.Errorf("stack position must be center, left or right, got %q", o.Stack.Position))
	}
	return errors.Join(errs...)
}
