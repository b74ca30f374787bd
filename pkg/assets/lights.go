package assets

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/scene"
)

// LightsExtension is the glTF extension carrying punctual lights.
const LightsExtension = "KHR_lights_punctual"

type punctualLight struct {
	Type      string      `json:"type"`
	Name      string      `json:"name,omitempty"`
	Color     *[3]float64 `json:"color,omitempty"`
	Intensity *float64    `json:"intensity,omitempty"`
	Range     *float64    `json:"range,omitempty"`
	Spot      *struct {
		OuterConeAngle *float64 `json:"outerConeAngle,omitempty"`
	} `json:"spot,omitempty"`
}

// extension decodes an extension value into v. Unregistered extensions
// arrive as raw JSON; anything else is round-tripped through JSON.
func extension(ext gltf.Extensions, name string, v any) (bool, error) {
	raw, ok := ext[name]
	if !ok {
		return false, nil
	}
	data, ok := raw.(json.RawMessage)
	if !ok {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return true, fmt.Errorf("encode %s: %w", name, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// documentLights converts the document-level light list.
func documentLights(doc *gltf.Document) ([]scene.Light, error) {
	var ext struct {
		Lights []punctualLight `json:"lights"`
	}
	if _, err := extension(doc.Extensions, LightsExtension, &ext); err != nil {
		return nil, err
	}
	lights := make([]scene.Light, len(ext.Lights))
	for i, pl := range ext.Lights {
		l, err := pl.light()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		lights[i] = l
	}
	return lights, nil
}

// nodeLight returns the light a node references, if any.
func nodeLight(n *gltf.Node, lights []scene.Light) (scene.Light, bool, error) {
	var ref struct {
		Light *int `json:"light"`
	}
	found, err := extension(n.Extensions, LightsExtension, &ref)
	if err != nil {
		// Registered decoders hand back a bare index.
		var idx int
		if _, err2 := extension(n.Extensions, LightsExtension, &idx); err2 != nil {
			return scene.Light{}, false, err
		}
		ref.Light = &idx
	}
	if !found || ref.Light == nil {
		return scene.Light{}, false, nil
	}
	if *ref.Light < 0 || *ref.Light >= len(lights) {
		return scene.Light{}, false, fmt.Errorf("assets: light index %d out of range", *ref.Light)
	}
	return lights[*ref.Light], true, nil
}

func (pl punctualLight) light() (scene.Light, error) {
	var l scene.Light
	switch pl.Type {
	case "directional":
		l = scene.DefaultLight(scene.Directional)
	case "point":
		l = scene.DefaultLight(scene.Point)
	case "spot":
		l = scene.DefaultLight(scene.Spot)
		l.ConeAngle = math.Pi / 4
		if pl.Spot != nil && pl.Spot.OuterConeAngle != nil {
			l.ConeAngle = *pl.Spot.OuterConeAngle
		}
	default:
		return l, fmt.Errorf("unknown light type %q", pl.Type)
	}
	c := math3d.One3()
	if pl.Color != nil {
		c = math3d.V3(pl.Color[0], pl.Color[1], pl.Color[2])
	}
	intensity := 1.0
	if pl.Intensity != nil {
		intensity = min(*pl.Intensity, 1)
	}
	l.Color = c.Scale(intensity)
	if pl.Range != nil && *pl.Range > 0 {
		l.Attenuation = math3d.V3(1, 0, 1/(*pl.Range**pl.Range))
	}
	return l, nil
}
