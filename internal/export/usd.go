package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/arframe/internal/capability"
	"github.com/Faultbox/arframe/internal/fsutil"
	"github.com/Faultbox/arframe/internal/logger"
	"github.com/Faultbox/arframe/internal/material"
	"github.com/Faultbox/arframe/pkg/formats"
	"github.com/Faultbox/arframe/pkg/math"
)

// Prim paths of the exported stage.
const (
	usdRoot      = "/Frame"
	usdMaterials = usdRoot + "/Materials"
)

// USD writes USD stages. Text layers are written natively; binary crate files
// are produced by converting the text layer with usdcat when it is installed.
type USD struct {
	usdcat string

	probe     sync.Once
	converter string // resolved usdcat path, empty when unavailable
}

// NewUSD returns the USD backend.
func NewUSD(opts Options) *USD {
	name := opts.USDCat
	if name == "" {
		name = "usdcat"
	}
	return &USD{usdcat: name}
}

// Name returns "usd".
func (b *USD) Name() string {
	return string(formats.FamilyUSD)
}

// Capabilities advertises binary output only when usdcat is available. Texture
// embedding needs a USDZ package, which is assembled outside this tool.
func (b *USD) Capabilities() (capability.Set, error) {
	set := capability.NewSet(
		capability.FormatASCII,
		capability.RelativePaths,
		capability.ExportMaterials,
		capability.ExportUVs,
	)
	if b.findConverter() != "" {
		set[capability.FormatBinary] = true
	}
	return set, nil
}

func (b *USD) findConverter() string {
	b.probe.Do(func() {
		path, err := exec.LookPath(b.usdcat)
		if err != nil {
			logger.Debug("usdcat not available, binary USD disabled", zap.String("usdcat", b.usdcat), zap.Error(err))
			return
		}
		b.converter = path
	})
	return b.converter
}

// Export writes the stage to path.
func (b *USD) Export(doc *Document, cfg capability.Config, path string) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if cfg.Format != formats.EncodingBinary {
		err := fsutil.WriteWith(path, 0o644, func(w io.Writer) error {
			return writeUSDA(w, doc, cfg)
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		return nil
	}

	converter := b.findConverter()
	if converter == "" {
		return fmt.Errorf("%w: binary USD requires usdcat", ErrBackendUnavailable)
	}
	return b.exportBinary(converter, doc, cfg, path)
}

// exportBinary writes a temporary text layer next to path and converts it to a
// crate file, renaming the result into place.
func (b *USD) exportBinary(converter string, doc *Document, cfg capability.Config, path string) error {
	dir, base := filepath.Dir(path), filepath.Base(path)

	text, err := os.CreateTemp(dir, "."+base+".*.usda")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	defer os.Remove(text.Name())

	werr := writeUSDA(text, doc, cfg)
	if cerr := text.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("%w: write text layer: %v", ErrExportFailed, werr)
	}

	crate, err := os.CreateTemp(dir, "."+base+".*.usdc")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	crate.Close()
	defer os.Remove(crate.Name())

	cmd := exec.Command(converter, text.Name(), "-o", crate.Name(), "--usdFormat", "usdc")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: usdcat: %v: %s", ErrExportFailed, err, bytes.TrimSpace(out))
	}
	logger.Debug("converted USD text layer to crate", zap.String("usdcat", converter), zap.String("path", path))

	if err := os.Chmod(crate.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := os.Rename(crate.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// writeUSDA writes the whole stage as a USDA text layer.
func writeUSDA(w io.Writer, doc *Document, cfg capability.Config) error {
	u := &usdaWriter{w: w}

	u.line("#usda 1.0")
	u.line("(")
	u.depth++
	u.line("customLayerData = {")
	u.depth++
	u.line("string assetId = %q", doc.AssetID.String())
	u.line("string generator = %q", Generator)
	u.depth--
	u.line("}")
	u.line(`defaultPrim = "Frame"`)
	u.line("metersPerUnit = 1")
	u.line("upAxis = \"Y\"")
	u.depth--
	u.line(")")
	u.line("")

	materials := cfg.ExportMaterials && len(doc.Materials) > 0

	u.open(`def Xform "Frame"`, `kind = "component"`)
	writeUSDMesh(u, doc, cfg, materials)
	if materials {
		u.line("")
		u.open(`def Scope "Materials"`)
		for i := range doc.Materials {
			if i > 0 {
				u.line("")
			}
			writeUSDMaterial(u, &doc.Materials[i])
		}
		u.close()
	}
	u.close()
	return u.err
}

func writeUSDMesh(u *usdaWriter, doc *Document, cfg capability.Config, materials bool) {
	m := doc.Mesh

	counts := make([]int, len(m.Faces))
	indices := make([]uint32, 0, m.CornerCount())
	normals := make([]math.Vec3, len(m.Faces))
	uvs := make([]math.Vec2, 0, m.CornerCount())
	for i := range m.Faces {
		f := &m.Faces[i]
		counts[i] = len(f.Indices)
		indices = append(indices, f.Indices...)
		normals[i] = f.Normal
		uvs = append(uvs, f.UVs...)
	}
	b := m.Bounds()

	var meta []string
	if materials {
		meta = append(meta, `prepend apiSchemas = ["MaterialBindingAPI"]`)
	}
	u.open(`def Mesh "Picture"`, meta...)
	u.line("uniform bool doubleSided = %d", boolInt(doubleSided(m)))
	u.line("float3[] extent = [%s, %s]", usdTuple(b.Min.X, b.Min.Y, b.Min.Z), usdTuple(b.Max.X, b.Max.Y, b.Max.Z))
	u.line("int[] faceVertexCounts = %s", usdIntArray(counts))
	u.line("int[] faceVertexIndices = %s", usdIntArray(indices))
	if materials {
		u.line("rel material:binding = <%s>", usdMaterialPath(&doc.Materials[0]))
	}
	u.attrWithMeta("normal3f[] normals", usdVec3Array(normals), `interpolation = "uniform"`)
	u.line("point3f[] points = %s", usdVec3Array(m.Points))
	if cfg.ExportUVs && len(uvs) == len(indices) {
		u.attrWithMeta("texCoord2f[] primvars:st", usdVec2Array(uvs), `interpolation = "faceVarying"`)
	}
	u.line(`uniform token subdivisionScheme = "none"`)

	if materials {
		u.line(`uniform token subsetFamily:materialBind:familyType = "partition"`)
		for slot, faces := range facesByMaterial(m, len(doc.Materials)) {
			if len(faces) == 0 {
				continue
			}
			spec := &doc.Materials[slot]
			u.line("")
			u.open(fmt.Sprintf("def GeomSubset %q", usdIdentifier(spec.Name)), `prepend apiSchemas = ["MaterialBindingAPI"]`)
			u.line(`uniform token elementType = "face"`)
			u.line(`uniform token familyName = "materialBind"`)
			u.line("int[] indices = %s", usdIntArray(faces))
			u.line("rel material:binding = <%s>", usdMaterialPath(spec))
			u.close()
		}
	}
	u.close()
}

func usdMaterialPath(spec *material.Spec) string {
	return usdMaterials + "/" + usdIdentifier(spec.Name)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
