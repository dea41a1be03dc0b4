package export

import (
	"fmt"
	"io"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/arframe/internal/capability"
	"github.com/Faultbox/arframe/internal/fsutil"
	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/internal/material"
	"github.com/Faultbox/arframe/pkg/formats"
)

// GLTF writes glTF 2.0 documents: JSON with an embedded buffer for ASCII, a GLB
// container for binary.
type GLTF struct{}

// NewGLTF returns the glTF backend.
func NewGLTF() *GLTF {
	return &GLTF{}
}

// Name returns "gltf".
func (b *GLTF) Name() string {
	return string(formats.FamilyGLTF)
}

// Capabilities reports every option; glTF can carry the texture inside the
// document.
func (b *GLTF) Capabilities() (capability.Set, error) {
	return capability.NewSet(capability.AllOptions...), nil
}

// Export writes the document to path.
func (b *GLTF) Export(doc *Document, cfg capability.Config, path string) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	gdoc, err := buildGLTF(doc, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	err = fsutil.WriteWith(path, 0o644, func(w io.Writer) error {
		enc := gltf.NewEncoder(w)
		enc.AsBinary = cfg.Format == formats.EncodingBinary
		if !enc.AsBinary {
			enc.SetJSONIndent("", "  ")
		}
		return enc.Encode(gdoc)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

func buildGLTF(doc *Document, cfg capability.Config) (*gltf.Document, error) {
	g := gltf.NewDocument()
	g.Asset.Generator = Generator
	g.Asset.Extras = map[string]any{"assetId": doc.AssetID.String()}

	materials := cfg.ExportMaterials && len(doc.Materials) > 0
	var matIndex []int
	if materials {
		var err error
		matIndex, err = addGLTFMaterials(g, doc, cfg)
		if err != nil {
			return nil, err
		}
	}

	mesh := &gltf.Mesh{Name: "Picture"}
	slots := len(doc.Materials)
	for slot, faces := range facesByMaterial(doc.Mesh, slots) {
		if len(faces) == 0 {
			continue
		}
		prim := gltfPrimitive(g, doc.Mesh, faces, cfg.ExportUVs)
		if materials {
			prim.Material = gltf.Index(matIndex[slot])
		}
		mesh.Primitives = append(mesh.Primitives, prim)
	}
	g.Meshes = append(g.Meshes, mesh)
	g.Nodes = append(g.Nodes, &gltf.Node{Name: "Frame", Mesh: gltf.Index(len(g.Meshes) - 1)})
	g.Scenes[0].Nodes = append(g.Scenes[0].Nodes, len(g.Nodes)-1)

	if cfg.Format != formats.EncodingBinary {
		for _, buf := range g.Buffers {
			buf.EmbeddedResource()
		}
	}
	return g, nil
}

// gltfPrimitive unwelds faces into per-corner vertices, since glTF attributes are
// per vertex and the frame's normals and UVs are per face corner. Polygons are
// fanned into triangles, keeping their counter-clockwise winding.
func gltfPrimitive(g *gltf.Document, m *geometry.Mesh, faces []int, uvs bool) *gltf.Primitive {
	var (
		positions [][3]float32
		normals   [][3]float32
		texcoords [][2]float32
		indices   []uint16
	)
	for _, fi := range faces {
		f := &m.Faces[fi]
		base := uint16(len(positions))
		for c, idx := range f.Indices {
			positions = append(positions, m.Points[idx].Array())
			normals = append(normals, f.Normal.Array())
			if uvs {
				var st [2]float32
				if c < len(f.UVs) {
					// glTF puts the texture origin at the top left.
					st = f.UVs[c].FlipY().Array()
				}
				texcoords = append(texcoords, st)
			}
		}
		for c := 1; c+1 < len(f.Indices); c++ {
			indices = append(indices, base, base+uint16(c), base+uint16(c+1))
		}
	}

	attrs := map[string]int{
		gltf.POSITION: modeler.WritePosition(g, positions),
		gltf.NORMAL:   modeler.WriteNormal(g, normals),
	}
	if uvs {
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(g, texcoords)
	}
	return &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(modeler.WriteIndices(g, indices)),
		Mode:       gltf.PrimitiveTriangles,
	}
}

// addGLTFMaterials adds one glTF material per spec and returns their indices.
func addGLTFMaterials(g *gltf.Document, doc *Document, cfg capability.Config) ([]int, error) {
	texture := -1
	textureFor := func() (int, error) {
		if texture >= 0 {
			return texture, nil
		}
		img, err := addGLTFImage(g, doc, cfg)
		if err != nil {
			return 0, err
		}
		g.Samplers = append(g.Samplers, &gltf.Sampler{
			MagFilter: gltf.MagLinear,
			MinFilter: gltf.MinLinearMipMapLinear,
			WrapS:     gltf.WrapClampToEdge,
			WrapT:     gltf.WrapClampToEdge,
		})
		g.Textures = append(g.Textures, &gltf.Texture{
			Sampler: gltf.Index(len(g.Samplers) - 1),
			Source:  gltf.Index(img),
		})
		texture = len(g.Textures) - 1
		return texture, nil
	}

	out := make([]int, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := gltfMaterial(&doc.Materials[i], doubleSided(doc.Mesh), textureFor)
		if err != nil {
			return nil, err
		}
		g.Materials = append(g.Materials, mat)
		out[i] = len(g.Materials) - 1
	}
	return out, nil
}

// addGLTFImage references the staged texture by its fixed name, or stores its
// bytes in the document buffer when embedding.
func addGLTFImage(g *gltf.Document, doc *Document, cfg capability.Config) (int, error) {
	if !cfg.EmbedTextures {
		g.Images = append(g.Images, &gltf.Image{Name: material.TextureFileName, URI: material.TextureFileName})
		return len(g.Images) - 1, nil
	}

	f, err := os.Open(doc.TexturePath)
	if err != nil {
		return 0, fmt.Errorf("embed texture: %w", err)
	}
	defer f.Close()
	return modeler.WriteImage(g, material.TextureFileName, "image/png", f)
}
