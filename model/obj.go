package model

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cogentcore.org/core/math32"
)

// DefaultColor is applied when the material library cannot be loaded
const DefaultColor = "#0088ff"

// Material is one entry of an MTL library
type Material struct {
	Name        string
	Diffuse     math32.Vector3
	Opacity     float32
	DoubleSided bool
}

// DefaultMaterial is the fallback used when no material library is available
func DefaultMaterial() Material {
	return Material{
		Name:        "default",
		Diffuse:     math32.Vec3(0, float32(0x88)/255, 1),
		Opacity:     1,
		DoubleSided: true,
	}
}

// Model summarizes a parsed OBJ file
type Model struct {
	Vertices  int
	Normals   int
	TexCoords int
	Faces     int
	Objects   []string
	// MaterialLibs lists the mtllib references found in the OBJ file
	MaterialLibs []string
	// MaterialRefs lists the usemtl names in order of first use
	MaterialRefs []string
	Materials    []Material
	Bounds       math32.Box3
}

// Material looks up a material by name
func (m *Model) Material(name string) (Material, bool) {
	for _, mat := range m.Materials {
		if mat.Name == name {
			return mat, true
		}
	}
	return Material{}, false
}

// ParseOBJ reads the geometry statements of a Wavefront OBJ file.
// Unknown statements are ignored.
func ParseOBJ(r io.Reader) (*Model, error) {
	m := &Model{Bounds: math32.B3Empty()}
	seenRef := map[string]bool{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			m.Bounds.ExpandByPoint(v)
			m.Vertices++
		case "vn":
			m.Normals++
		case "vt":
			m.TexCoords++
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			for _, ref := range fields[1:] {
				if err := checkFaceRef(ref, m.Vertices); err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
			}
			m.Faces++
		case "o", "g":
			if len(fields) > 1 {
				m.Objects = append(m.Objects, strings.Join(fields[1:], " "))
			}
		case "mtllib":
			m.MaterialLibs = append(m.MaterialLibs, fields[1:]...)
		case "usemtl":
			if len(fields) > 1 && !seenRef[fields[1]] {
				seenRef[fields[1]] = true
				m.MaterialRefs = append(m.MaterialRefs, fields[1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if m.Vertices == 0 {
		return nil, fmt.Errorf("no vertices")
	}
	return m, nil
}

// ParseMTL reads the materials of a Wavefront MTL library. Every material
// is rendered double sided.
func ParseMTL(r io.Reader) ([]Material, error) {
	var mats []Material
	var cur *Material

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: newmtl without name", line)
			}
			mats = append(mats, Material{Name: fields[1], Diffuse: math32.Vec3(1, 1, 1), Opacity: 1, DoubleSided: true})
			cur = &mats[len(mats)-1]
			continue
		}
		if cur == nil {
			continue
		}
		switch fields[0] {
		case "Kd":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: Kd: %w", line, err)
			}
			cur.Diffuse = v
		case "d":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: d without value", line)
			}
			d, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: d: %w", line, err)
			}
			cur.Opacity = float32(d)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mats) == 0 {
		return nil, fmt.Errorf("no materials")
	}
	return mats, nil
}

func parseVec3(fields []string) (math32.Vector3, error) {
	if len(fields) < 3 {
		return math32.Vector3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var c [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math32.Vector3{}, err
		}
		c[i] = float32(f)
	}
	return math32.Vec3(c[0], c[1], c[2]), nil
}

// checkFaceRef validates the vertex index of a v, v/vt, v//vn or v/vt/vn reference
func checkFaceRef(ref string, vertices int) error {
	idx, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(idx)
	if err != nil {
		return fmt.Errorf("face reference %q: %w", ref, err)
	}
	if n < 0 {
		n = vertices + n + 1
	}
	if n < 1 || n > vertices {
		return fmt.Errorf("face reference %q out of range (%d vertices)", ref, vertices)
	}
	return nil
}
