package main

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/arbor/pkg/math3d"
)

// axis tracks one rotation angle whose velocity decays to rest through a
// spring.
type axis struct {
	Position float64
	Velocity float64

	spring harmonica.Spring
	accel  float64 // spring velocity of Velocity itself
}

func newAxis(fps int, frequency, damping float64) axis {
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (a *axis) update() {
	a.Position += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// Orbit spins the model pivot. Impulses add angular velocity that the
// springs bleed off frame by frame.
type Orbit struct {
	Pitch, Yaw, Roll axis

	fps                int
	frequency, damping float64
}

// NewOrbit creates an orbit stepped fps times a second. Damping 1 is
// critically damped: velocity returns to zero without overshoot.
func NewOrbit(fps int, frequency, damping float64) *Orbit {
	o := &Orbit{fps: fps, frequency: frequency, damping: damping}
	o.Reset()
	return o
}

// Update advances one frame.
func (o *Orbit) Update() {
	o.Pitch.update()
	o.Yaw.update()
	o.Roll.update()
}

// Impulse adds angular velocity in radians per frame.
func (o *Orbit) Impulse(pitch, yaw, roll float64) {
	o.Pitch.Velocity += pitch
	o.Yaw.Velocity += yaw
	o.Roll.Velocity += roll
}

// Reset stops the orbit at the rest orientation.
func (o *Orbit) Reset() {
	o.Pitch = newAxis(o.fps, o.frequency, o.damping)
	o.Yaw = newAxis(o.fps, o.frequency, o.damping)
	o.Roll = newAxis(o.fps, o.frequency, o.damping)
}

// Rotation returns the current orientation.
func (o *Orbit) Rotation() math3d.Quat {
	return math3d.QuatEuler(o.Pitch.Position, o.Yaw.Position, o.Roll.Position)
}
