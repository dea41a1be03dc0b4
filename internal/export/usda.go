package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/arframe/pkg/math"
)

const usdaIndent = "    "

// usdaWriter emits indented USDA text. The first write error is kept and all
// later writes become no-ops.
type usdaWriter struct {
	w     io.Writer
	depth int
	err   error
}

func (u *usdaWriter) line(format string, args ...any) {
	if u.err != nil {
		return
	}
	if format == "" {
		_, u.err = io.WriteString(u.w, "\n")
		return
	}
	_, u.err = fmt.Fprintf(u.w, strings.Repeat(usdaIndent, u.depth)+format+"\n", args...)
}

// open starts a prim. meta lines, if any, go into the prim's metadata block.
func (u *usdaWriter) open(header string, meta ...string) {
	if len(meta) == 0 {
		u.line("%s", header)
	} else {
		u.line("%s (", header)
		u.depth++
		for _, m := range meta {
			u.line("%s", m)
		}
		u.depth--
		u.line(")")
	}
	u.line("{")
	u.depth++
}

func (u *usdaWriter) close() {
	u.depth--
	u.line("}")
}

// attrWithMeta writes "decl = value" followed by an interpolation block.
func (u *usdaWriter) attrWithMeta(decl, value string, meta ...string) {
	u.line("%s = %s (", decl, value)
	u.depth++
	for _, m := range meta {
		u.line("%s", m)
	}
	u.depth--
	u.line(")")
}

// usdFloat formats v with the shortest float32 round-trip representation and
// never prints a negative zero.
func usdFloat(v float32) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func usdTuple(vs ...float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = usdFloat(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func usdVec3Array(vs []math.Vec3) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = usdTuple(v.X, v.Y, v.Z)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func usdVec2Array(vs []math.Vec2) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = usdTuple(v.X, v.Y)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func usdIntArray[T ~int | ~uint32](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(int(v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// usdIdentifier turns a display name into a valid prim name.
func usdIdentifier(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
