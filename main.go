package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/df07/go-progressive-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Scene: a built-in name or a path to a .json scene file")
	width := flag.Int("width", 0, "Image width (0 = scene default)")
	height := flag.Int("height", 0, "Image height (0 = scene default)")
	samples := flag.Int("samples", 0, "Samples per pixel, one full-frame pass each (0 = scene default)")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = CPU count)")
	output := flag.String("output", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	serve := flag.Int("serve", 0, "Serve the live viewer on this port while rendering (0 = off)")
	sceneDir := flag.String("scenes", "scenes", "Directory of .json scene files offered by the viewer")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Progressive Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, name := range scene.Names() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("  <file>.json - scene description file")
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}

	if *serve > 0 {
		if err := runServer(*serve, *sceneDir, server.RenderRequest{
			Scene:   *sceneType,
			Width:   *width,
			Height:  *height,
			Passes:  *samples,
			Workers: *workers,
		}, *output); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*sceneType, *width, *height, *samples, *workers, *output); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// run renders a scene to completion (or until interrupted) and saves the result
func run(sceneType string, width, height, samples, workers int, output string) error {
	fmt.Println("Starting Progressive Path Tracer...")

	selectedScene, err := createScene(sceneType)
	if err != nil {
		return err
	}
	width, height, samples = resolveSize(selectedScene, width, height, samples)
	selectedScene.SetImageSize(width, height)

	config := renderer.DefaultProgressiveConfig()
	config.TotalPasses = samples
	config.NumWorkers = workers
	raytracer := renderer.NewProgressiveRaytracer(selectedScene, width, height, config, renderer.NewDefaultLogger())

	// Ctrl-C stops after the passes in flight; the partial image is still saved
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	passChan, errChan := raytracer.RenderProgressive(ctx)

	var final image.Image
	for passResult := range passChan {
		final = passResult.Image
	}
	if err := <-errChan; err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("rendering failed: %w", err)
		}
		fmt.Println("Interrupted, saving partial render")
	}
	if final == nil {
		final = raytracer.Shared().Snapshot().Image()
	}

	stats := raytracer.Stats()
	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Samples per pixel: %d of %d (%.0f samples/s)\n",
		raytracer.Shared().Samples(), stats.TotalPasses, stats.SamplesPerSecond)

	filename := output
	if filename == "" {
		filename = timestampedFilename(sceneOutputDir(sceneType), time.Now())
	}
	if err := savePNG(final, filename); err != nil {
		return err
	}
	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// runServer renders through a viewer session and keeps serving after the render completes
func runServer(port int, sceneDir string, req server.RenderRequest, output string) error {
	webServer := server.NewServer(port, sceneDir)
	defer webServer.Close()

	sess, err := webServer.StartRender(req)
	if err != nil {
		return err
	}
	fmt.Printf("Rendering %q at %dx%d, watch at http://localhost:%d\n", sess.Scene.Name, sess.Width, sess.Height, port)

	go func() {
		<-sess.Done()
		if complete, _ := sess.Status(); !complete {
			return
		}
		filename := output
		if filename == "" {
			filename = timestampedFilename(sceneOutputDir(req.Scene), time.Now())
		}
		if err := savePNG(sess.Raytracer.Shared().Snapshot().Image(), filename); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Render saved as %s\n", filename)
	}()

	return webServer.Start()
}

// createScene builds a built-in scene or loads a .json scene file
func createScene(sceneType string) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, fmt.Errorf("no scene given")
	}
	return scene.Create(sceneType)
}

// resolveSize fills zero flags from the scene's recommended render settings
func resolveSize(s *scene.Scene, width, height, samples int) (int, int, int) {
	if width <= 0 {
		width = s.RenderConfig.Width
	}
	if height <= 0 {
		height = s.RenderConfig.Height
	}
	if samples <= 0 {
		samples = s.RenderConfig.Samples
	}
	return width, height, samples
}

// sceneOutputDir returns output/<scene>; scene files use their base name
func sceneOutputDir(sceneType string) string {
	name := sceneType
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return filepath.Join("output", name)
}

func timestampedFilename(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("render_%s.png", t.Format("20060102_150405")))
}

// savePNG writes img to filename, creating parent directories
func savePNG(img image.Image, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return file.Close()
}
