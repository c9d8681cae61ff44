package spinview

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformNode is the root transform of a loaded model. The viewer only
// ever mutates RotationY; everything else is loader-provided metadata.
type TransformNode struct {
	Name      string
	RotationY float64
}

// Vertex is the GPU vertex layout. The spinview tags drive the reflective
// vertex buffer layout in the render surface.
type Vertex struct {
	Position [3]float32 `spinview:"layout" format:"float3" location:"0"`
	Normal   [3]float32 `spinview:"layout" format:"float3" location:"1"`
	UV       [2]float32 `spinview:"layout" format:"float2" location:"2"`
}

// MeshData is one drawable mesh plus the material name used to assign a
// shader to it.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint16
	Material string
}

type Model struct {
	Root   *TransformNode
	Meshes []MeshData
}

// ModelLoader is the external asset source. The core treats it purely as
// an event source: exactly one of ready or fail is called, possibly from
// another goroutine.
type ModelLoader interface {
	Load(ready func(*Model), fail func(error))
}

// ProceduralLoader builds a UV sphere shell in-process. It exists so the
// widget has a model without any file I/O, and doubles as the reference
// loader in tests.
type ProceduralLoader struct {
	Radius   float32
	Segments int
	Rings    int
}

func (l ProceduralLoader) Load(ready func(*Model), fail func(error)) {
	if l.Radius <= 0 || l.Segments < 3 || l.Rings < 2 {
		fail(fmt.Errorf("procedural model: invalid parameters (radius=%v segments=%d rings=%d)",
			l.Radius, l.Segments, l.Rings))
		return
	}
	mesh := BuildSphereMesh(l.Radius, l.Segments, l.Rings)
	ready(&Model{
		Root:   &TransformNode{Name: "procedural-sphere"},
		Meshes: []MeshData{mesh},
	})
}

// BuildSphereMesh generates a UV sphere with outward normals and
// equirectangular texture coordinates.
func BuildSphereMesh(radius float32, segments, rings int) MeshData {
	vertices := make([]Vertex, 0, (segments+1)*(rings+1))
	for ring := 0; ring <= rings; ring++ {
		phi := math.Pi * float64(ring) / float64(rings)
		y := float32(math.Cos(phi))
		r := float32(math.Sin(phi))
		for seg := 0; seg <= segments; seg++ {
			theta := 2 * math.Pi * float64(seg) / float64(segments)
			x := r * float32(math.Cos(theta))
			z := r * float32(math.Sin(theta))
			n := mgl32.Vec3{x, y, z}
			vertices = append(vertices, Vertex{
				Position: [3]float32{x * radius, y * radius, z * radius},
				Normal:   [3]float32{n.X(), n.Y(), n.Z()},
				UV: [2]float32{
					float32(seg) / float32(segments),
					float32(ring) / float32(rings),
				},
			})
		}
	}

	indices := make([]uint16, 0, segments*rings*6)
	stride := segments + 1
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			a := uint16(ring*stride + seg)
			b := uint16((ring+1)*stride + seg)
			indices = append(indices,
				a, b, a+1,
				a+1, b, b+1,
			)
		}
	}

	return MeshData{
		Vertices: vertices,
		Indices:  indices,
		Material: "reveal",
	}
}
