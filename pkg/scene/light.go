package scene

import (
	"math"

	"github.com/taigrr/arbor/pkg/math3d"
)

// LightKind is the type of a light source.
type LightKind int

const (
	Directional LightKind = iota
	Point
	Spot
)

func (k LightKind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Point:
		return "point"
	case Spot:
		return "spot"
	}
	return "unknown"
}

// Light holds the parameters of a light node. Lights shine down their
// local -Z axis; position and direction come from the node's world
// transform.
type Light struct {
	Kind    LightKind
	Enabled bool

	Color   math3d.Vec3 // linear RGB in 0-1
	Ambient float64     // ambient contribution as a fraction of Color

	// Attenuation holds the constant, linear and quadratic terms.
	Attenuation math3d.Vec3

	// ConeAngle is the cutoff half-angle in radians. Pi or more means no
	// cutoff; only spot lights narrow it.
	ConeAngle float64
}

// DefaultLight returns an enabled white light of the given kind.
func DefaultLight(kind LightKind) Light {
	cone := math.Pi
	if kind == Spot {
		cone = math.Pi / 6
	}
	return Light{
		Kind:        kind,
		Enabled:     true,
		Color:       math3d.One3(),
		Ambient:     0.1,
		Attenuation: math3d.V3(1, 0, 0),
		ConeAngle:   cone,
	}
}

// LightState is a light resolved against its world transform.
type LightState struct {
	ID        ID
	Name      string
	Light     Light
	Position  math3d.Vec3
	Direction math3d.Vec3
}

// LightState resolves a light node's world position and direction. It
// returns false if id is not a live light node.
func (s *Scene) LightState(id ID) (LightState, bool) {
	n := s.get(id)
	if n == nil || n.kind != KindLight {
		return LightState{}, false
	}
	world, _ := s.world(n)
	return LightState{
		ID:        id,
		Name:      n.name,
		Light:     n.light,
		Position:  world.Translation(),
		Direction: world.MulVec3Dir(math3d.V3(0, 0, -1)).Normalize(),
	}, true
}

// ActiveLights returns the enabled, visible lights in creation order.
func (s *Scene) ActiveLights() []LightState {
	var out []LightState
	for _, id := range s.lights {
		n := s.get(id)
		if n == nil || !n.light.Enabled {
			continue
		}
		if _, vis := s.world(n); !vis {
			continue
		}
		ls, _ := s.LightState(id)
		out = append(out, ls)
	}
	return out
}

// SetLight replaces a light node's parameters.
func (s *Scene) SetLight(id ID, l Light) error {
	n, err := s.lookupKind(id, KindLight, ErrNotLight)
	if err != nil {
		return err
	}
	n.light = l
	return nil
}
