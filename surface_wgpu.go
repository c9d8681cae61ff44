package spinview

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"runtime"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// sceneUniforms mirrors the SceneUniforms block in revealShaderWGSL.
type sceneUniforms struct {
	MVP             mgl32.Mat4
	Model           mgl32.Mat4
	SliceStart      float32
	SliceArc        float32
	AngularVelocity float32
	Pad             float32
}

// WGPUSurface renders the model into a glfw window through wgpu. It
// implements RenderSurface; Draw reports a lost surface as an error
// instead of panicking so the render loop can stop and surface it once.
type WGPUSurface struct {
	window *glfw.Window

	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration

	pipeline    *wgpu.RenderPipeline
	vertexBuf   *wgpu.Buffer
	indexBuf    *wgpu.Buffer
	uniformBuf  *wgpu.Buffer
	bindGroup   *wgpu.BindGroup
	textureView *wgpu.TextureView
	sampler     *wgpu.Sampler
	indexCount  uint32

	width  int
	height int
	log    Logger
}

// NewWGPUSurface creates the window and the GPU device. Must run on the
// main OS thread; it locks the calling goroutine there for glfw.
func NewWGPUSurface(opts Options, log Logger) (*WGPUSurface, error) {
	if log == nil {
		log = NewNopLogger()
	}
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(opts.WindowWidth, opts.WindowHeight, opts.WindowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "spinview device",
	})
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("request device: %w", err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(opts.WindowWidth),
		Height:      uint32(opts.WindowHeight),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	log.Infof("created surface %dx%d '%s'", opts.WindowWidth, opts.WindowHeight, opts.WindowTitle)

	return &WGPUSurface{
		window:        win,
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
		width:         opts.WindowWidth,
		height:        opts.WindowHeight,
		log:           log,
	}, nil
}

func (s *WGPUSurface) Window() *glfw.Window { return s.window }

// SetScene builds the pipeline and GPU resources for one mesh, one
// material and one base color texture pulled from the asset server.
func (s *WGPUSurface) SetScene(server *AssetServer, meshId, materialId, textureId, samplerId AssetId) error {
	mesh, ok := server.Mesh(meshId)
	if !ok {
		return fmt.Errorf("set scene: unknown mesh asset %s", meshId)
	}
	material, ok := server.Material(materialId)
	if !ok {
		return fmt.Errorf("set scene: unknown material asset %s", materialId)
	}
	texture, ok := server.Texture(textureId)
	if !ok {
		return fmt.Errorf("set scene: unknown texture asset %s", textureId)
	}
	samplerAsset, ok := server.Sampler(samplerId)
	if !ok {
		return fmt.Errorf("set scene: unknown sampler asset %s", samplerId)
	}

	shader, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          material.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: material.Source},
	})
	if err != nil {
		return fmt.Errorf("compile material %s: %w", material.Name, err)
	}
	defer shader.Release()

	pipeline, err := s.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: material.Name,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout(Vertex{})},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format: s.surfaceConfig.Format,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			// No culling: the reveal cut exposes the interior back faces.
			CullMode: wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	vertexBuf, err := s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "spinview vertices",
		Contents: wgpu.ToBytes(mesh.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	indexBuf, err := s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "spinview indices",
		Contents: wgpu.ToBytes(mesh.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	uniformBuf, err := s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "spinview uniforms",
		Contents: uniformBytes(sceneUniforms{MVP: mgl32.Ident4(), Model: mgl32.Ident4()}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}

	textureView, err := s.uploadTexture(texture)
	if err != nil {
		return err
	}

	sampler, err := s.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpuFilterMode(samplerAsset.Filter),
		MinFilter:    wgpuFilterMode(samplerAsset.Filter),
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	layout := pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	bindGroup, err := s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniformBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: textureView},
			{Binding: 2, Sampler: sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}

	s.pipeline = pipeline
	s.vertexBuf = vertexBuf
	s.indexBuf = indexBuf
	s.uniformBuf = uniformBuf
	s.textureView = textureView
	s.sampler = sampler
	s.bindGroup = bindGroup
	s.indexCount = uint32(len(mesh.Indices))
	return nil
}

func (s *WGPUSurface) uploadTexture(asset TextureAsset) (*wgpu.TextureView, error) {
	extent := wgpu.Extent3D{
		Width:              asset.Width,
		Height:             asset.Height,
		DepthOrArrayLayers: 1,
	}
	texture, err := s.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "spinview base color",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	defer texture.Release()

	view, err := texture.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("create texture view: %w", err)
	}

	err = s.queue.WriteTexture(
		texture.AsImageCopy(),
		asset.Texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  asset.Width * 4,
			RowsPerImage: asset.Height,
		},
		&extent,
	)
	if err != nil {
		return nil, fmt.Errorf("upload texture: %w", err)
	}
	return view, nil
}

// Resize reconfigures the swapchain for a new drawable size.
func (s *WGPUSurface) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width = width
	s.height = height
	s.surfaceConfig.Width = uint32(width)
	s.surfaceConfig.Height = uint32(height)
	s.surface.Configure(s.adapter, s.device, s.surfaceConfig)
}

// Draw renders one frame. With no scene attached (model not loaded or
// load failed) it clears only, which keeps the render loop alive on an
// empty scene.
func (s *WGPUSurface) Draw(frame FrameState) error {
	nextTexture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create frame view: %w", err)
	}
	defer view.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	drawScene := frame.Model != nil && s.pipeline != nil
	if drawScene {
		if err := s.queue.WriteBuffer(s.uniformBuf, 0, uniformBytes(s.frameUniforms(frame))); err != nil {
			return fmt.Errorf("write uniforms: %w", err)
		}
	}

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.07, G: 0.07, B: 0.09, A: 1.0},
			},
		},
	})
	defer renderPass.Release()

	if drawScene {
		renderPass.SetPipeline(s.pipeline)
		renderPass.SetBindGroup(0, s.bindGroup, nil)
		renderPass.SetVertexBuffer(0, s.vertexBuf, 0, wgpu.WholeSize)
		renderPass.SetIndexBuffer(s.indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		renderPass.DrawIndexed(s.indexCount, 1, 0, 0, 0)
	}
	if err := renderPass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command buffer: %w", err)
	}
	defer cmdBuffer.Release()

	s.queue.Submit(cmdBuffer)
	s.surface.Present()
	return nil
}

func (s *WGPUSurface) frameUniforms(frame FrameState) sceneUniforms {
	aspect := float32(s.width) / float32(s.height)
	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 100)
	viewMx := mgl32.LookAtV(
		mgl32.Vec3{0, 0.8, 2.4},
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 1, 0},
	)
	modelMx := mgl32.HomogRotate3DY(float32(frame.Angle))
	return sceneUniforms{
		MVP:             proj.Mul4(viewMx).Mul4(modelMx),
		Model:           modelMx,
		SliceStart:      float32(frame.Uniforms.SliceStart),
		SliceArc:        float32(frame.Uniforms.SliceArc),
		AngularVelocity: float32(frame.Uniforms.AngularVelocity),
	}
}

// Release frees GPU resources and the window.
func (s *WGPUSurface) Release() {
	if s.bindGroup != nil {
		s.bindGroup.Release()
	}
	if s.sampler != nil {
		s.sampler.Release()
	}
	if s.textureView != nil {
		s.textureView.Release()
	}
	if s.uniformBuf != nil {
		s.uniformBuf.Release()
	}
	if s.indexBuf != nil {
		s.indexBuf.Release()
	}
	if s.vertexBuf != nil {
		s.vertexBuf.Release()
	}
	if s.pipeline != nil {
		s.pipeline.Release()
	}
	if s.device != nil {
		s.device.Release()
	}
	if s.adapter != nil {
		s.adapter.Release()
	}
	if s.surface != nil {
		s.surface.Release()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	glfw.Terminate()
}

func uniformBytes(u sceneUniforms) []byte {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, u); err != nil {
		panic(fmt.Errorf("serialize uniforms: %w", err))
	}
	return buf.Bytes()
}

// vertexBufferLayout builds the wgpu layout from the spinview struct tags
// on the vertex type.
func vertexBufferLayout(vertexType any) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		panic("vertex must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("spinview") == "layout" {
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if err != nil {
				panic(err)
			}
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         parseVertexFormat(field.Tag.Get("format")),
			})
		}
		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

func parseVertexFormat(name string) wgpu.VertexFormat {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2
	case "float3":
		return wgpu.VertexFormatFloat32x3
	case "float4":
		return wgpu.VertexFormatFloat32x4
	default:
		panic("unsupported vertex layout format: " + name)
	}
}

func wgpuFilterMode(mode string) wgpu.FilterMode {
	switch mode {
	case "nearest":
		return wgpu.FilterModeNearest
	case "linear":
		return wgpu.FilterModeLinear
	default:
		panic(fmt.Sprintf("unknown filter mode: %s", mode))
	}
}
