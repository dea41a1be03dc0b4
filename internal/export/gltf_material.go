package export

import (
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/arframe/internal/material"
)

// gltfMaterial translates a material graph to glTF's metallic-roughness model.
// An image_texture feeding base_color becomes baseColorTexture; one feeding
// emission becomes emissiveTexture, with its scale as the emissive factor.
func gltfMaterial(spec *material.Spec, twoSided bool, texture func() (int, error)) (*gltf.Material, error) {
	g := &spec.Graph
	mat := &gltf.Material{
		Name:        spec.Name,
		DoubleSided: twoSided,
		AlphaMode:   gltf.AlphaOpaque,
	}

	surfaces := g.NodesOfKind(material.KindPrincipled)
	if len(surfaces) == 0 {
		return mat, nil
	}
	s := surfaces[0]

	pbr := &gltf.PBRMetallicRoughness{
		MetallicFactor:  gltf.Float(float64(s.Metallic)),
		RoughnessFactor: gltf.Float(float64(s.Roughness)),
	}

	if src, ok := linkedTexture(g, s.Name, material.SocketBaseColor); ok {
		idx, err := texture()
		if err != nil {
			return nil, err
		}
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: idx}
		if src.Scale != 1 {
			pbr.BaseColorFactor = &[4]float64{float64(src.Scale), float64(src.Scale), float64(src.Scale), 1}
		}
	} else {
		c := s.BaseColor.Float64()
		pbr.BaseColorFactor = &[4]float64{c[0], c[1], c[2], 1}
	}

	if src, ok := linkedTexture(g, s.Name, material.SocketEmission); ok {
		idx, err := texture()
		if err != nil {
			return nil, err
		}
		mat.EmissiveTexture = &gltf.TextureInfo{Index: idx}
		mat.EmissiveFactor = [3]float64{float64(src.Scale), float64(src.Scale), float64(src.Scale)}
	} else {
		mat.EmissiveFactor = s.Emission.Float64()
	}

	mat.PBRMetallicRoughness = pbr
	return mat, nil
}

// linkedTexture returns the image_texture node feeding socket on node.
func linkedTexture(g *material.Graph, node, socket string) (*material.Node, bool) {
	l, ok := g.Input(node, socket)
	if !ok {
		return nil, false
	}
	src, ok := g.Node(l.From)
	if !ok || src.Kind != material.KindImageTexture {
		return nil, false
	}
	return src, true
}
