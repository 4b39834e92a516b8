package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-progressive-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	sceneName := flag.String("scene", "default", "Scene to start rendering: a built-in name or a .json file in -scenes")
	width := flag.Int("width", 0, "Image width (0 = scene default)")
	height := flag.Int("height", 0, "Image height (0 = scene default)")
	passes := flag.Int("passes", 0, "Total full-frame passes (0 = scene default)")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = CPU count)")
	sceneDir := flag.String("scenes", "scenes", "Directory of .json scene files")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port, *sceneDir)
	defer webServer.Close()

	sess, err := webServer.StartRender(server.RenderRequest{
		Scene:   *sceneName,
		Width:   *width,
		Height:  *height,
		Passes:  *passes,
		Workers: *workers,
	})
	if err != nil {
		log.Printf("Error starting render: %v", err)
		os.Exit(1)
	}

	log.Printf("Progressive Path Tracer Web Server")
	log.Printf("Rendering %q at %dx%d", sess.Scene.Name, sess.Width, sess.Height)
	log.Printf("Visit http://localhost:%d to watch the render", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
