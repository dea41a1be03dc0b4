package export

import (
	"fmt"

	"github.com/Faultbox/arframe/internal/material"
)

// usdPort is a USD shader attribute a canonical socket maps to.
type usdPort struct {
	name string
	typ  string
}

// usdShaderDef maps a node kind to a UsdShade shader and its socket names.
type usdShaderDef struct {
	id      string
	inputs  map[string]usdPort
	outputs map[string]usdPort
}

var usdShaders = map[material.NodeKind]usdShaderDef{
	material.KindUVReader: {
		id:      "UsdPrimvarReader_float2",
		outputs: map[string]usdPort{material.SocketResult: {"outputs:result", "float2"}},
	},
	material.KindImageTexture: {
		id:      "UsdUVTexture",
		inputs:  map[string]usdPort{material.SocketST: {"inputs:st", "float2"}},
		outputs: map[string]usdPort{material.SocketRGB: {"outputs:rgb", "float3"}},
	},
	material.KindPrincipled: {
		id: "UsdPreviewSurface",
		inputs: map[string]usdPort{
			material.SocketBaseColor: {"inputs:diffuseColor", "color3f"},
			material.SocketEmission:  {"inputs:emissiveColor", "color3f"},
		},
		outputs: map[string]usdPort{material.SocketSurface: {"outputs:surface", "token"}},
	},
}

// writeUSDMaterial translates spec's graph into a UsdShade material. The output
// node becomes the Material prim's surface terminal.
func writeUSDMaterial(u *usdaWriter, spec *material.Spec) {
	g := &spec.Graph
	path := usdMaterialPath(spec)

	u.open(fmt.Sprintf("def Material %q", usdIdentifier(spec.Name)))
	for _, out := range g.NodesOfKind(material.KindOutput) {
		if l, ok := g.Input(out.Name, material.SocketSurface); ok {
			u.line("token outputs:surface.connect = <%s>", usdConnection(path, g, l))
		}
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		def, ok := usdShaders[n.Kind]
		if !ok {
			continue
		}
		u.line("")
		u.open(fmt.Sprintf("def Shader %q", usdIdentifier(n.Name)))
		u.line("uniform token info:id = %q", def.id)
		writeUSDShaderInputs(u, path, g, n, def)
		for _, l := range g.Links {
			if l.From != n.Name {
				continue
			}
			if port, ok := def.outputs[l.FromSocket]; ok {
				u.line("%s %s", port.typ, port.name)
				break
			}
		}
		u.close()
	}
	u.close()
}

func writeUSDShaderInputs(u *usdaWriter, path string, g *material.Graph, n *material.Node, def usdShaderDef) {
	switch n.Kind {
	case material.KindUVReader:
		u.line("string inputs:varname = %q", n.Varname)

	case material.KindImageTexture:
		u.line("asset inputs:file = @%s@", n.File)
		if n.Scale != 1 {
			u.line("float4 inputs:scale = %s", usdTuple(n.Scale, n.Scale, n.Scale, 1))
		}
		u.line("token inputs:sourceColorSpace = %q", usdColorSpace(n.ColorSpace))
		u.line(`token inputs:wrapS = "clamp"`)
		u.line(`token inputs:wrapT = "clamp"`)

	case material.KindPrincipled:
		if _, linked := g.Input(n.Name, material.SocketBaseColor); !linked {
			u.line("color3f inputs:diffuseColor = %s", usdTuple(n.BaseColor.R, n.BaseColor.G, n.BaseColor.B))
		}
		if _, linked := g.Input(n.Name, material.SocketEmission); !linked && n.Emission != (material.RGB{}) {
			u.line("color3f inputs:emissiveColor = %s", usdTuple(n.Emission.R, n.Emission.G, n.Emission.B))
		}
		u.line("float inputs:metallic = %s", usdFloat(n.Metallic))
		u.line("float inputs:roughness = %s", usdFloat(n.Roughness))
		u.line("int inputs:useSpecularWorkflow = 0")
	}

	for _, l := range g.Links {
		if l.To != n.Name {
			continue
		}
		port, ok := def.inputs[l.ToSocket]
		if !ok {
			continue
		}
		u.line("%s %s.connect = <%s>", port.typ, port.name, usdConnection(path, g, l))
	}
}

// usdConnection returns the attribute path feeding l.
func usdConnection(materialPath string, g *material.Graph, l material.Link) string {
	src, ok := g.Node(l.From)
	if !ok {
		return materialPath
	}
	port := usdShaders[src.Kind].outputs[l.FromSocket]
	return materialPath + "/" + usdIdentifier(src.Name) + "." + port.name
}

func usdColorSpace(cs material.ColorSpace) string {
	if cs == material.Raw {
		return "raw"
	}
	return "sRGB"
}
