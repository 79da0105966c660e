// PhotoBOM: photo to bill of materials
//
// Classifies component photos as wood or mechanical from their mean color,
// attaches the bill of materials selected by filename keyword, and prints
// or exports the priced parts lists.
//
// Build:
//   go build -o photobom ./cmd/photobom
//
// Examples:
//   photobom --demo3 --export pdf,csv
//   photobom --images engine.png,gearbox.jpg,strut.jpg
//   photobom templates
//   photobom serve --addr :8080

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
