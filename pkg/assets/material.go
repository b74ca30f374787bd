package assets

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
)

// ParamAlphaCutoff carries the alpha mask threshold of masked materials.
const ParamAlphaCutoff = "alphaCutoff"

// materialKey identifies a converted material. The same glTF material
// maps to different shaders depending on what the primitive can feed it.
type materialKey struct {
	index    int // -1 for the default material
	prim     gfx.Primitive
	textured bool
}

// material returns the material for a primitive, converting and caching
// the glTF material on first use.
func (imp *importer) material(idx *int, g *gfx.Geometry) (*gfx.Material, error) {
	key := materialKey{index: -1, prim: g.Primitive}
	var gm *gltf.Material
	if idx != nil {
		if *idx < 0 || *idx >= len(imp.doc.Materials) {
			return nil, fmt.Errorf("assets: material index %d out of range", *idx)
		}
		key.index = *idx
		gm = imp.doc.Materials[*idx]
	}

	var tex *gfx.Texture
	if gm != nil && gm.PBRMetallicRoughness != nil && gm.PBRMetallicRoughness.BaseColorTexture != nil && len(g.UVs) > 0 {
		var err error
		if tex, err = imp.texture(gm.PBRMetallicRoughness.BaseColorTexture.Index); err != nil {
			return nil, err
		}
		key.textured = tex != nil
	}
	if m, ok := imp.materials[key]; ok {
		return m, nil
	}

	m := gfx.NewMaterial(materialName(gm, key), imp.shaderFor(key))
	m.SetParam(gfx.ParamColor, math3d.V4(1, 1, 1, 1))
	if gm != nil {
		m.TwoSided = gm.DoubleSided
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			c := pbr.BaseColorFactorOrDefault()
			m.SetParam(gfx.ParamColor, math3d.V4(c[0], c[1], c[2], c[3]))
		}
		switch gm.AlphaMode {
		case gltf.AlphaBlend:
			m.Blend = true
			m.SetBlendFunc(gfx.BlendSrcAlpha, gfx.BlendOneMinusSrcAlpha)
			m.DepthWrite = false
		case gltf.AlphaMask:
			m.SetParam(ParamAlphaCutoff, gm.AlphaCutoffOrDefault())
		}
	}
	if key.textured {
		m.SetTexture(gfx.SamplerDiffuse, tex)
	}
	imp.materials[key] = m
	return m, nil
}

func (imp *importer) shaderFor(key materialKey) *gfx.Shader {
	set := imp.opts.Shaders
	switch {
	case key.prim != gfx.Triangles:
		return set.Unlit
	case key.textured && set.Textured != nil:
		return set.Textured
	case set.Lit != nil:
		return set.Lit
	}
	return set.Unlit
}

func materialName(gm *gltf.Material, key materialKey) string {
	name := "default"
	if gm != nil {
		name = gm.Name
		if name == "" {
			name = fmt.Sprintf("material%d", key.index)
		}
	}
	return fmt.Sprintf("%s/%s", name, key.prim)
}

// texture decodes a glTF texture, caching by texture index. Textures whose
// image cannot be read are logged and return nil so the material falls
// back to its base color.
func (imp *importer) texture(idx int) (*gfx.Texture, error) {
	if t, ok := imp.textures[idx]; ok {
		return t, nil
	}
	if idx < 0 || idx >= len(imp.doc.Textures) {
		return nil, fmt.Errorf("assets: texture index %d out of range", idx)
	}
	gt := imp.doc.Textures[idx]
	if gt.Source == nil || *gt.Source < 0 || *gt.Source >= len(imp.doc.Images) {
		imp.log.Warn("texture has no image", zap.Int("texture", idx))
		return nil, nil
	}
	img := imp.doc.Images[*gt.Source]
	tex, err := imp.decodeImage(img, *gt.Source)
	if err != nil {
		imp.log.Warn("skipping texture", zap.Int("texture", idx), zap.Error(err))
		return nil, nil
	}
	if gt.Sampler != nil && *gt.Sampler >= 0 && *gt.Sampler < len(imp.doc.Samplers) {
		s := imp.doc.Samplers[*gt.Sampler]
		tex.WrapU, tex.WrapV = wrapMode(s.WrapS), wrapMode(s.WrapT)
		if s.MagFilter == gltf.MagNearest {
			tex.Filter = gfx.FilterNearest
		} else {
			tex.Filter = gfx.FilterBilinear
		}
	} else {
		tex.Filter = gfx.FilterBilinear
	}
	imp.textures[idx] = tex
	return tex, nil
}

// decodeImage reads an image from a buffer view, a data URI or a file
// relative to the document.
func (imp *importer) decodeImage(img *gltf.Image, idx int) (*gfx.Texture, error) {
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("image%d", idx)
	}
	switch {
	case img.BufferView != nil:
		data, err := imp.bufferView(*img.BufferView)
		if err != nil {
			return nil, err
		}
		return gfx.DecodeTexture(name, bytes.NewReader(data))
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		return gfx.DecodeTexture(name, bytes.NewReader(data))
	case img.URI != "":
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		return gfx.LoadTexture(filepath.Join(imp.dir, filepath.FromSlash(uri)))
	}
	return nil, fmt.Errorf("image %q has no data", name)
}

func (imp *importer) bufferView(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(imp.doc.BufferViews) {
		return nil, fmt.Errorf("assets: buffer view %d out of range", idx)
	}
	bv := imp.doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(imp.doc.Buffers) {
		return nil, fmt.Errorf("assets: buffer %d out of range", bv.Buffer)
	}
	data := imp.doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if end > len(data) {
		return nil, fmt.Errorf("assets: buffer view %d exceeds buffer", idx)
	}
	return data[bv.ByteOffset:end], nil
}

func wrapMode(w gltf.WrappingMode) gfx.Wrap {
	if w == gltf.WrapClampToEdge {
		return gfx.WrapClamp
	}
	return gfx.WrapRepeat
}
