// Command registry builds the Presto template registry: it discovers
// template repositories, extracts metadata from their release binaries
// inside a sandbox, renders previews, and publishes registry.json.
package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("presto-registry %s\n", Version)
			return
		case "discover":
			exitOn(runDiscover(os.Args[2:]))
			return
		case "extract":
			exitOn(runExtract(os.Args[2:]))
			return
		case "render":
			exitOn(runRender(os.Args[2:]))
			return
		case "index":
			exitOn(runIndex(os.Args[2:]))
			return
		case "build":
			exitOn(runBuild(os.Args[2:]))
			return
		case "help", "--help", "-h":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	printHelp()
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("presto-registry - Presto template registry builder")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  registry discover [-force] [-root DIR]   find templates needing an update")
	fmt.Println("  registry extract  [-root DIR] [-jobs N]  download, verify, and extract bundles")
	fmt.Println("  registry render   [-root DIR] [-font-path DIR]  compile SVG previews")
	fmt.Println("  registry index    [-root DIR]            aggregate and publish registry.json")
	fmt.Println("  registry build    [-force] [-root DIR] [-font-path DIR]  run all stages")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  GITHUB_TOKEN   API token for discovery and downloads (optional)")
	fmt.Println("  FORCE_REBUILD  set to \"true\" to reprocess every template")
}
