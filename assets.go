package spinview

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

type MaterialAsset struct {
	Name   string
	Source string // WGSL
}

type TextureAsset struct {
	Texels []uint8 // RGBA8
	Width  uint32
	Height uint32
}

type SamplerAsset struct {
	Filter string
}

// maxTextureDim caps uploaded texture extents; larger pngs are rescaled.
const maxTextureDim = 2048

// AssetServer is the registry the render surface pulls meshes, materials,
// textures and samplers from, keyed by opaque ids.
type AssetServer struct {
	meshes    map[AssetId]MeshData
	materials map[AssetId]MaterialAsset
	textures  map[AssetId]TextureAsset
	samplers  map[AssetId]SamplerAsset
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:    make(map[AssetId]MeshData),
		materials: make(map[AssetId]MaterialAsset),
		textures:  make(map[AssetId]TextureAsset),
		samplers:  make(map[AssetId]SamplerAsset),
	}
}

func (s *AssetServer) LoadMesh(mesh MeshData) AssetId {
	id := makeAssetId()
	s.meshes[id] = mesh
	return id
}

func (s *AssetServer) Mesh(id AssetId) (MeshData, bool) {
	m, ok := s.meshes[id]
	return m, ok
}

// LoadMaterialSource registers WGSL shader code under a name.
func (s *AssetServer) LoadMaterialSource(name, source string) AssetId {
	id := makeAssetId()
	s.materials[id] = MaterialAsset{Name: name, Source: source}
	return id
}

// LoadMaterialFile reads WGSL shader code from disk.
func (s *AssetServer) LoadMaterialFile(path string) (AssetId, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load material %s: %w", path, err)
	}
	return s.LoadMaterialSource(path, string(data)), nil
}

func (s *AssetServer) Material(id AssetId) (MaterialAsset, bool) {
	m, ok := s.materials[id]
	return m, ok
}

// CreateTexture registers raw RGBA8 texels.
func (s *AssetServer) CreateTexture(texels []uint8, width, height uint32) AssetId {
	id := makeAssetId()
	s.textures[id] = TextureAsset{Texels: texels, Width: width, Height: height}
	return id
}

// CreateSolidTexture registers a 1x1 texture of the given color, the
// fallback base color when no texture file is configured.
func (s *AssetServer) CreateSolidTexture(r, g, b, a uint8) AssetId {
	return s.CreateTexture([]uint8{r, g, b, a}, 1, 1)
}

// LoadTexture decodes a png, converts it to RGBA and rescales it down to
// maxTextureDim if needed.
func (s *AssetServer) LoadTexture(path string) (AssetId, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("load texture %s: %w", path, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode texture %s: %w", path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxTextureDim || h > maxTextureDim {
		scale := float64(maxTextureDim) / float64(max(w, h))
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
		return s.CreateTexture(dst.Pix, uint32(dst.Bounds().Dx()), uint32(dst.Bounds().Dy())), nil
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		xdraw.Draw(rgba, bounds, img, bounds.Min, xdraw.Src)
	}
	return s.CreateTexture(rgba.Pix, uint32(w), uint32(h)), nil
}

func (s *AssetServer) Texture(id AssetId) (TextureAsset, bool) {
	t, ok := s.textures[id]
	return t, ok
}

func (s *AssetServer) CreateSampler(filter string) AssetId {
	id := makeAssetId()
	s.samplers[id] = SamplerAsset{Filter: filter}
	return id
}

func (s *AssetServer) Sampler(id AssetId) (SamplerAsset, bool) {
	sm, ok := s.samplers[id]
	return sm, ok
}
