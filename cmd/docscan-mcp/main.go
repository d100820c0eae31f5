package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/pipeline"
	"github.com/ironsheep/docscan-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  OCR:        %t\n", ocr.Available)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "docscan-mcp: %v\n", err)
		os.Exit(2)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
		"workers": cfg.Workers,
	}).Info("Starting docscan MCP server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.InferenceTimeout)
	detector := detection.Select(ctx, detection.SelectOptions{
		InferenceURL:  cfg.InferenceURL,
		Timeout:       cfg.InferenceTimeout,
		MinConfidence: cfg.MinConfidence,
		Contour:       detection.DefaultOptions(),
	})
	cancel()

	recognizer, err := ocr.New(cfg.OCRLanguage)
	switch {
	case errors.Is(err, ocr.ErrUnavailable):
		logger.Debug("OCR not compiled in; searchable PDFs disabled")
	case err != nil:
		logger.WithError(err).Warn("OCR unavailable; searchable PDFs disabled")
	}

	scanner := pipeline.NewScanner(pipeline.Options{
		Detector:   detector,
		Quality:    cfg.JPEGQuality,
		OutputDir:  cfg.OutputDir,
		Recognizer: recognizer,
	})

	srv := server.New(server.Options{
		Scanner: scanner,
		Workers: cfg.Workers,
		Version: Version,
	})
	defer srv.Close()

	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}

func printHelp() {
	fmt.Println("docscan-mcp - MCP server for scanning documents from photos")
	fmt.Println()
	fmt.Println("Usage: docscan-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DOCSCAN_LOG_LEVEL=info          debug, info, warn or error")
	fmt.Println("  DOCSCAN_LOG_FORMAT=json         json or text")
	fmt.Println("  DOCSCAN_WORKERS=<cpus>          concurrent tool calls")
	fmt.Println("  DOCSCAN_INFERENCE_URL=          rectangle-inference service (empty: contour search)")
	fmt.Println("  DOCSCAN_INFERENCE_TIMEOUT=10s   per-request timeout for the service")
	fmt.Println("  DOCSCAN_MIN_CONFIDENCE=0.6      lowest accepted service score")
	fmt.Println("  DOCSCAN_JPEG_QUALITY=80         JPEG quality 1-100")
	fmt.Println("  DOCSCAN_OUTPUT_DIR=<tmp>        where rectified pages are written")
	fmt.Println("  DOCSCAN_OCR_LANGUAGE=eng        Tesseract language for searchable PDFs")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
