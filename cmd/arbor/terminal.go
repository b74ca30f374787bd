package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/config"
	"github.com/taigrr/arbor/pkg/math3d"
)

const torqueStrength = 3.0

// session is the interactive state of a terminal view.
type session struct {
	*viewer

	width, height int
	torque        struct{ pitch, yaw, roll float64 }
	mouseDown     bool
	lastX, lastY  int
	lightMode     bool
	pendingLight  math3d.Vec3
}

// view runs the interactive terminal viewer until Esc, ctrl+c or ctx ends.
func view(ctx context.Context, cfg config.Config, log *zap.Logger, modelPath string) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	// Each terminal cell shows two framebuffer rows.
	v, err := newViewer(cfg, log, modelPath, width, height*2)
	if err != nil {
		return err
	}
	s := &session{viewer: v, width: width, height: height}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Warn("terminal shutdown", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := term.Events()
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Viewer.FPS))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if size, isResize := ev.(uv.WindowSizeEvent); isResize {
				s.width, s.height = size.Width, size.Height
				term.Erase()
				term.Resize(s.width, s.height)
				if err := s.resize(s.width, s.height*2); err != nil {
					return err
				}
				continue
			}
			if err := s.handle(ev, cancel); err != nil {
				return err
			}
		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), 0.1)
			last = now
			if err := s.tick(dt); err != nil {
				return err
			}
			v.fb.Draw(term, term.Bounds())
			v.hud.Draw(term, term.Bounds())
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// tick applies held keys, advances the orbit and renders one frame.
func (s *session) tick(dt float64) error {
	s.orbit.Impulse(s.torque.pitch*dt, s.torque.yaw*dt, s.torque.roll*dt)
	// Key releases are not reported by every terminal.
	s.torque.pitch *= 0.9
	s.torque.yaw *= 0.9
	s.torque.roll *= 0.9

	if err := s.step(); err != nil {
		return err
	}
	if _, err := s.frame(); err != nil {
		return err
	}
	return nil
}

func (s *session) handle(ev any, quit context.CancelFunc) error {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		return s.key(ev, quit)

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			s.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			s.torque.yaw = 0
		case ev.MatchString("q", "e"):
			s.torque.roll = 0
		}

	case uv.MouseClickEvent:
		if s.lightMode {
			s.lightMode = false
			s.lightDir = s.pendingLight
			s.hud.SetStatus("")
			return s.aimLight(s.lightDir)
		}
		s.mouseDown = true
		s.lastX, s.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		s.mouseDown = false

	case uv.MouseMotionEvent:
		if s.lightMode {
			s.pendingLight = screenToLightDir(ev.X, ev.Y, s.width, s.height)
			return s.aimLight(s.pendingLight)
		}
		if s.mouseDown {
			dx, dy := ev.X-s.lastX, ev.Y-s.lastY
			s.orbit.Impulse(float64(dy)*0.03, float64(dx)*0.03, 0)
			s.lastX, s.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			return s.zoom(-0.5)
		case uv.MouseWheelDown:
			return s.zoom(0.5)
		}
	}
	return nil
}

func (s *session) key(ev uv.KeyPressEvent, quit context.CancelFunc) error {
	switch {
	case ev.MatchString("escape"):
		if s.lightMode {
			s.lightMode = false
			s.hud.SetStatus("")
			return s.aimLight(s.lightDir)
		}
		quit()
	case ev.MatchString("ctrl+c"):
		quit()
	case ev.MatchString("w", "up"):
		s.torque.pitch = -torqueStrength
	case ev.MatchString("s", "down"):
		s.torque.pitch = torqueStrength
	case ev.MatchString("a", "left"):
		s.torque.yaw = -torqueStrength
	case ev.MatchString("d", "right"):
		s.torque.yaw = torqueStrength
	case ev.MatchString("q"):
		s.torque.roll = -torqueStrength
	case ev.MatchString("e"):
		s.torque.roll = torqueStrength
	case ev.MatchString("space"):
		s.orbit.Impulse(
			(rand.Float64()-0.5)*1.5,
			(rand.Float64()-0.5)*1.5,
			(rand.Float64()-0.5)*1.5,
		)
	case ev.MatchString("r"):
		return s.reset()
	case ev.MatchString("+", "="):
		return s.zoom(-0.5)
	case ev.MatchString("-", "_"):
		return s.zoom(0.5)
	case ev.MatchString("t"):
		s.hud.SetStatus("shading: " + s.cycleShading())
	case ev.MatchString("b"):
		s.toggleBoundingBoxes()
	case ev.MatchString("c"):
		s.toggleCulling()
	case ev.MatchString("g"):
		return s.toggleHelpers()
	case ev.MatchString("l"):
		s.lightMode = true
		s.pendingLight = s.lightDir
		s.hud.SetStatus("aiming light: click to set, Esc to cancel")
	case ev.MatchString("?", "shift+/"):
		s.hud.Toggle()
	}
	return nil
}
