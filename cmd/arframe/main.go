// arframe turns a picture and its physical size into a framed-picture 3D
// document for AR preview viewers.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/arframe/internal/config"
	"github.com/Faultbox/arframe/internal/logger"
	"github.com/Faultbox/arframe/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s: config: %v\n", pipeline.KindInvalidRequest, err)
		return pipeline.ExitCode(pipeline.KindInvalidRequest)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: write config: %v\n", pipeline.KindInternal, err)
			return pipeline.ExitCode(pipeline.KindInternal)
		}
		fmt.Printf("config: %s\n", path)
		return 0
	}

	req, err := parseArgs(config.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", pipeline.KindInvalidRequest, err)
		printUsage()
		return pipeline.ExitCode(pipeline.KindInvalidRequest)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s: logger: %v\n", pipeline.KindInternal, err)
		return pipeline.ExitCode(pipeline.KindInternal)
	}
	defer logger.Sync()

	logger.With(zap.String("run", uuid.NewString()))
	logger.Info("Starting",
		zap.String("image", req.ImagePath),
		zap.String("output", req.OutputPath),
		zap.Float64("width_cm", req.WidthCM),
		zap.Float64("height_cm", req.HeightCM),
		zap.Float64("thickness_cm", req.ThicknessCM),
		zap.String("backend", cfg.Export.Backend),
	)
	logger.Sugar.Debugf("Config: %+v", cfg)

	res, err := pipeline.New(cfg).Run(req)
	if err != nil {
		kind := pipeline.Classify(err)
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", kind, err)
		return pipeline.ExitCode(kind)
	}

	printResult(res)
	return 0
}

// parseArgs reads <image> <output> <width_cm> <height_cm> [thickness_cm].
func parseArgs(args []string) (pipeline.Request, error) {
	if len(args) < 4 || len(args) > 5 {
		return pipeline.Request{}, fmt.Errorf("expected 4 or 5 arguments, got %d", len(args))
	}
	req := pipeline.Request{ImagePath: args[0], OutputPath: args[1]}

	nums := []struct {
		name string
		dst  *float64
	}{
		{"width_cm", &req.WidthCM},
		{"height_cm", &req.HeightCM},
		{"thickness_cm", &req.ThicknessCM},
	}
	for i, arg := range args[2:] {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("%s: %q is not a number", nums[i].name, arg)
		}
		*nums[i].dst = v
	}
	return req, nil
}

func printResult(res *pipeline.Result) {
	fmt.Printf("path: %s\n", res.Path)
	fmt.Printf("size: %d\n", res.Size)
	fmt.Printf("format: %s/%s\n", res.Signature.Family, res.Signature.Encoding)
	fmt.Printf("variant: %s\n", res.Variant)
	fmt.Printf("dimensions_m: %g x %g x %g\n", res.Dimensions.WidthM, res.Dimensions.HeightM, res.Dimensions.DepthM)
	fmt.Printf("mesh: %d points, %d faces\n", res.Points, res.Faces)
	fmt.Printf("materials: %s\n", strings.Join(res.Materials, ", "))
	fmt.Printf("asset_id: %s\n", res.AssetID)
	if res.Texture != "" {
		fmt.Printf("texture: %s\n", res.Texture)
	} else {
		fmt.Println("texture: embedded")
	}
	for _, d := range res.Diagnostics {
		fmt.Printf("diagnostic: %s: %s\n", d.Kind, d.Message)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `arframe - framed picture AR asset generator

Usage:
  arframe [flags] <image> <output> <width_cm> <height_cm> [thickness_cm]

Without thickness (or with 0) a flat quad is written; a positive thickness
produces a solid frame.

Flags:
  -config path          Config file (.yaml or .toml)
  -backend usd|gltf     Export backend (default usd)
  -format binary|ascii  Requested encoding (default binary)
  -embed-textures       Embed the texture when the backend can
  -outline              Add the emissive border
  -anchor center|bottom Origin placement
  -log-file path        Also write JSON logs to a rotating file
  -write-config path    Write the effective config and exit
  -debug                Debug logging

Examples:
  arframe photo.png frame.usd 30 40
  arframe -backend gltf -embed-textures photo.jpg frame.glb 30 40 1.5
  arframe -backend gltf -write-config arframe.yaml`)
}
