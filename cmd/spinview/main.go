package main

import (
	"flag"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spinview3d/spinview"
)

func main() {
	optionsPath := flag.String("options", "", "path to a YAML options file")
	texturePath := flag.String("texture", "", "png base color texture (solid color if empty)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := spinview.NewDefaultLogger("spinview", *debug)

	opts := spinview.DefaultOptions()
	if *optionsPath != "" {
		var err error
		opts, err = spinview.LoadOptions(*optionsPath)
		if err != nil {
			log.Errorf("options: %v", err)
			os.Exit(1)
		}
	}
	opts.Debug = opts.Debug || *debug
	log.SetDebug(opts.Debug)

	surface, err := spinview.NewWGPUSurface(opts, log)
	if err != nil {
		log.Errorf("surface: %v", err)
		os.Exit(1)
	}
	defer surface.Release()

	server := spinview.NewAssetServer()
	materialId := server.LoadMaterialSource("reveal", spinview.RevealShaderSource())
	samplerId := server.CreateSampler("linear")
	textureId := server.CreateSolidTexture(0xcc, 0x88, 0x3a, 0xff)
	if *texturePath != "" {
		textureId, err = server.LoadTexture(*texturePath)
		if err != nil {
			log.Errorf("texture: %v", err)
			os.Exit(1)
		}
	}

	viewer := spinview.NewViewerBuilder().
		WithOptions(opts).
		WithLogger(log).
		WithSurface(surface).
		WithEventPump(func() {
			glfw.PollEvents()
		}).
		Build()

	viewer.On(spinview.EventReady, func(payload any) {
		log.Infof("model ready")
	})
	viewer.On(spinview.EventError, func(payload any) {
		log.Errorf("viewer error: %v", payload)
		viewer.Close()
	})
	viewer.On(spinview.EventRenderingPaused, func(payload any) {
		log.Debugf("rendering paused")
	})
	viewer.On(spinview.EventRenderingResumed, func(payload any) {
		log.Debugf("rendering resumed")
	})

	spinview.BindWindowInput(viewer, surface.Window())
	surface.Window().SetCloseCallback(func(w *glfw.Window) {
		viewer.Close()
	})

	loader := spinview.ProceduralLoader{Radius: 0.8, Segments: 64, Rings: 32}
	loader.Load(func(m *spinview.Model) {
		meshId := server.LoadMesh(m.Meshes[0])
		if err := surface.SetScene(server, meshId, materialId, textureId, samplerId); err != nil {
			log.Errorf("scene: %v", err)
			viewer.ModelFailed(err)
			return
		}
		viewer.ModelReady(m)
	}, func(err error) {
		viewer.ModelFailed(err)
	})

	viewer.Run()
}
