package main

import (
	"fmt"
	"log"
	"os"

	"github.com/anshap1719/stardetect/internal/pipeline"
	"github.com/anshap1719/stardetect/internal/server"
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
			fmt.Printf("stardetect-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("stardetect-mcp - MCP server for star detection in astronomical images")
			fmt.Println()
			fmt.Println("Usage: stardetect-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  STARDETECT_CONFIG=<file.json>   Base detector configuration")
			fmt.Println("  STARDETECT_LOG_LEVEL=debug      Enable debug logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("STARDETECT_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Star Detect MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg := pipeline.DefaultConfig()
	if path := os.Getenv("STARDETECT_CONFIG"); path != "" {
		loaded, err := pipeline.LoadConfig(path)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		cfg = loaded
		if debug {
			log.Printf("Loaded detector config from %s: %+v", path, cfg)
		}
	}

	server.Version = Version
	srv, err := server.New(cfg, debug)
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
