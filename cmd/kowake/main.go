package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"kowake/internal/config"
	"kowake/internal/logging"
	"kowake/internal/pipeline"
	"kowake/internal/web"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input xlsx path")
		sheet := fs.String("sheet", "", "sheet name (default: first sheet)")
		out := fs.String("out", "", "output path (default: OUTPUT_DIR/<generated name>)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		blob, err := os.ReadFile(*input)
		must(err)

		res := pipeline.New().Process(blob, *sheet)
		if !res.OK {
			must(errors.New(res.Message))
		}
		fmt.Println(res.Message)
		if len(res.Artifact) == 0 {
			return
		}

		path := strings.TrimSpace(*out)
		if path == "" {
			must(os.MkdirAll(cfg.OutputDir, 0o755))
			path = filepath.Join(cfg.OutputDir, res.Filename)
		}
		must(os.WriteFile(path, res.Artifact, 0o644))
		fmt.Printf("saved %s\n", path)
	case "serve":
		srv := web.NewServer(cfg, pipeline.New())
		slog.Info("listening", "addr", cfg.HTTPAddr)
		must(http.ListenAndServe(cfg.HTTPAddr, srv.Router()))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: kowake <command>")
	fmt.Println("commands:")
	fmt.Println("  run --input=...xlsx [--sheet=...] [--out=...xlsx]")
	fmt.Println("  serve")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
