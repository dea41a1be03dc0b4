package material

import (
	"github.com/Faultbox/arframe/internal/geometry"
)

// Node names used by composed graphs.
const (
	nodeST       = "st_reader"
	nodeDiffuse  = "diffuse_texture"
	nodeEmissive = "emissive_texture"
	nodeSurface  = "surface"
	nodeOutput   = "output"
)

// Compose returns the materials for a frame: FRONT always, SIDE for the solid
// variant, OUTLINE when the mesh carries the border embellishment. The order is the
// material slot order; pass Tags(specs) to Mesh.AssignMaterials.
func Compose(opts Options, variant geometry.Variant, outline bool) ([]Spec, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	specs := []Spec{frontSpec(opts)}
	if variant == geometry.Solid {
		specs = append(specs, sideSpec(opts))
	}
	if outline {
		specs = append(specs, outlineSpec(opts))
	}
	return specs, nil
}

// Tags returns the face tag of each spec in slot order.
func Tags(specs []Spec) []geometry.FaceTag {
	tags := make([]geometry.FaceTag, len(specs))
	for i := range specs {
		tags[i] = specs[i].Tag
	}
	return tags
}

func frontSpec(opts Options) Spec {
	s := Spec{
		Name:             "Front",
		Tag:              geometry.Front,
		TexturePath:      TextureFileName,
		ColorSpace:       opts.ColorSpace,
		BaseColor:        RGB{1, 1, 1},
		EmissionStrength: opts.EmissionStrength,
		Roughness:        opts.Roughness,
	}

	g := Graph{
		Nodes: []Node{
			{Name: nodeST, Kind: KindUVReader, Varname: "st"},
			{Name: nodeDiffuse, Kind: KindImageTexture, File: TextureFileName, ColorSpace: opts.ColorSpace, Scale: 1},
			{Name: nodeSurface, Kind: KindPrincipled, Roughness: opts.Roughness},
			{Name: nodeOutput, Kind: KindOutput},
		},
		Links: []Link{
			{nodeST, SocketResult, nodeDiffuse, SocketST},
			{nodeDiffuse, SocketRGB, nodeSurface, SocketBaseColor},
			{nodeSurface, SocketSurface, nodeOutput, SocketSurface},
		},
	}
	// Emission samples the same texture, scaled, so unlit viewers still show it.
	if opts.EmissionStrength > 0 {
		g.Nodes = append(g.Nodes, Node{
			Name: nodeEmissive, Kind: KindImageTexture,
			File: TextureFileName, ColorSpace: opts.ColorSpace, Scale: opts.EmissionStrength,
		})
		g.Links = append(g.Links,
			Link{nodeST, SocketResult, nodeEmissive, SocketST},
			Link{nodeEmissive, SocketRGB, nodeSurface, SocketEmission},
		)
	}
	s.Graph = g
	return s
}

func sideSpec(opts Options) Spec {
	return Spec{
		Name:       "Side",
		Tag:        geometry.Side,
		ColorSpace: opts.ColorSpace,
		BaseColor:  opts.SideColor,
		Roughness:  opts.SideRoughness,
		Graph:      constantGraph(opts.SideColor, RGB{}, opts.SideRoughness),
	}
}

func outlineSpec(opts Options) Spec {
	emission := opts.OutlineColor.Scale(opts.OutlineEmission)
	return Spec{
		Name:             "Outline",
		Tag:              geometry.Outline,
		ColorSpace:       opts.ColorSpace,
		BaseColor:        opts.OutlineColor,
		EmissionStrength: opts.OutlineEmission,
		Emission:         emission,
		Roughness:        opts.Roughness,
		Graph:            constantGraph(opts.OutlineColor, emission, opts.Roughness),
	}
}

// constantGraph is a texture-free principled surface.
func constantGraph(base, emission RGB, roughness float32) Graph {
	return Graph{
		Nodes: []Node{
			{Name: nodeSurface, Kind: KindPrincipled, BaseColor: base, Emission: emission, Roughness: roughness},
			{Name: nodeOutput, Kind: KindOutput},
		},
		Links: []Link{
			{nodeSurface, SocketSurface, nodeOutput, SocketSurface},
		},
	}
}
