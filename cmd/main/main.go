package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/garciat/kinfer/check"
	"github.com/garciat/kinfer/compile"
	"github.com/garciat/kinfer/config"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/files"
)

func main() {
	log.SetFlags(0)

	verbose := flag.Bool("v", false, "trace inference and resolution to stderr")
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: kinfer [-v] [-config file] (file | dir | -)...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	categories := cfg.Debug
	if *verbose {
		categories = append(categories, "all")
	}
	if err := check.SetDebug(categories...); err != nil {
		log.Fatal(err)
	}

	unit := compile.NewCompilationUnit(cfg.Workers)
	for _, path := range cfg.Stubs {
		if err := unit.AddStubs(path); err != nil {
			log.Fatal(err)
		}
	}
	for _, arg := range flag.Args() {
		switch arg {
		case "-":
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				log.Fatal(err)
			}
			text, err := files.DecodeSource(data)
			if err != nil {
				log.Fatal(err)
			}
			err = unit.AddSource("stdin.kt", text)
			if err != nil {
				log.Fatal(err)
			}
		default:
			if err := unit.AddPaths(arg); err != nil {
				log.Fatal(err)
			}
		}
	}
	if len(unit.Files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	results, err := unit.Compile(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	formatter := diag.NewFormatter(os.Stdout, cfg.Color)
	failed := false
	var all []diag.Diagnostic
	for _, result := range results {
		formatter.AddSource(result.File.Path, result.File.Text)
		formatter.FormatAll(result.Diagnostics)
		if result.Err != nil {
			log.Printf("%s: %v\n%s", result.File.Path, result.Err, result.Stack)
		}
		failed = failed || result.HasErrors()
		all = append(all, result.Diagnostics...)
	}
	fmt.Println(diag.Summary(all))

	if failed {
		os.Exit(1)
	}
}
