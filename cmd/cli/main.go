package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/akeren/logfox/config"
	"github.com/akeren/logfox/internal/components"
	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/pkg/utils"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "render":
		flags := flag.NewFlagSet("render", flag.ExitOnError)
		outDir := flags.String("out", utils.GetEnvTrimmedOrDefault("RENDER_OUT_DIR", "dist"), "output directory")
		prefix := flags.String("asset-prefix", "", "prefix prepended to /static asset paths")
		apiBase := flags.String("api-base", utils.GetEnvTrimmed("RENDER_API_BASE"), "origin serving /v1 when the page is hosted elsewhere")
		_ = flags.Parse(args[1:])

		site := config.NewAppConfig().Site
		err := renderSite(logger, renderOptions{
			OutDir:      *outDir,
			AssetPrefix: *prefix,
			APIBase:     *apiBase,
			Config: components.PageConfig{
				SiteName:    site.Name,
				Title:       site.Title,
				Description: site.Description,
			},
		})
		if err != nil {
			logger.Error("Render failed", "error", err.Error())
			os.Exit(1)
		}
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  render [-out dir] [-asset-prefix prefix] [-api-base url]  Write the landing page and its assets as static files")
	fmt.Println()
	fmt.Println("Without -api-base the page calls /v1 on its own origin, so a CDN must proxy /v1 to the server.")
	fmt.Println("With it, add the page's origin to the server's CORS_ALLOWED_ORIGIN.")
}
