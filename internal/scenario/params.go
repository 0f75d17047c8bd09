package scenario

import (
	"errors"
	"fmt"
)

// Parameter ranges accepted by the simulation collaborator.
const (
	MinVisionRange = 0.0
	MaxVisionRange = 20.0
	MinSoundRadius = 0.0
	MaxSoundRadius = 20.0
	MinReaction    = 0.5
	MaxReaction    = 2.0
)

// FactionParams tunes one side's perception and reaction speed.
type FactionParams struct {
	VisionRange float64 `json:"vision_range" yaml:"vision_range"`
	SoundRadius float64 `json:"sound_radius" yaml:"sound_radius"`
	Reaction    float64 `json:"reaction" yaml:"reaction"`
}

// DefaultAttackerParams returns the attacker defaults.
func DefaultAttackerParams() FactionParams {
	return FactionParams{VisionRange: 5, SoundRadius: 4, Reaction: 1.0}
}

// DefaultDefenderParams returns the defender defaults.
func DefaultDefenderParams() FactionParams {
	return FactionParams{VisionRange: 4, SoundRadius: 4, Reaction: 1.0}
}

// ErrParamOutOfRange is wrapped by Validate failures.
var ErrParamOutOfRange = errors.New("parameter out of range")

// Validate checks every field against its range.
func (p FactionParams) Validate() error {
	if p.VisionRange < MinVisionRange || p.VisionRange > MaxVisionRange {
		return fmt.Errorf("vision_range %.2f: %w", p.VisionRange, ErrParamOutOfRange)
	}
	if p.SoundRadius < MinSoundRadius || p.SoundRadius > MaxSoundRadius {
		return fmt.Errorf("sound_radius %.2f: %w", p.SoundRadius, ErrParamOutOfRange)
	}
	if p.Reaction < MinReaction || p.Reaction > MaxReaction {
		return fmt.Errorf("reaction %.2f: %w", p.Reaction, ErrParamOutOfRange)
	}
	return nil
}

// Clamped returns p with every field forced into range.
func (p FactionParams) Clamped() FactionParams {
	p.VisionRange = clampf(p.VisionRange, MinVisionRange, MaxVisionRange)
	p.SoundRadius = clampf(p.SoundRadius, MinSoundRadius, MaxSoundRadius)
	p.Reaction = clampf(p.Reaction, MinReaction, MaxReaction)
	return p
}

// ParamField names one adjustable FactionParams field.
type ParamField uint8

const (
	FieldVisionRange ParamField = iota
	FieldSoundRadius
	FieldReaction
)

func (f ParamField) String() string {
	switch f {
	case FieldVisionRange:
		return "vision_range"
	case FieldSoundRadius:
		return "sound_radius"
	case FieldReaction:
		return "reaction"
	default:
		return "unknown"
	}
}

// Step returns the slider increment for the field.
func (f ParamField) Step() float64 {
	if f == FieldReaction {
		return 0.1
	}
	return 0.5
}

// Get returns the field's value.
func (p FactionParams) Get(f ParamField) float64 {
	switch f {
	case FieldVisionRange:
		return p.VisionRange
	case FieldSoundRadius:
		return p.SoundRadius
	default:
		return p.Reaction
	}
}

// With returns p with field f set to v, clamped into range.
func (p FactionParams) With(f ParamField, v float64) FactionParams {
	switch f {
	case FieldVisionRange:
		p.VisionRange = v
	case FieldSoundRadius:
		p.SoundRadius = v
	case FieldReaction:
		p.Reaction = v
	}
	return p.Clamped()
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
