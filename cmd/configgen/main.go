package main

import (
	"flag"
	"log"

	"github.com/csbwire/csbwire/internal/config"
)

func defaultPath(kind string) string {
	switch kind {
	case "server":
		return "config.toml"
	case "targets":
		return "csbctl.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}

func main() {
	kind := flag.String("kind", "server", "config kind: server|targets")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}

		switch *kind {
		case "server":
			if _, err := config.LoadServerSettings(path); err != nil {
				log.Fatal(err)
			}
		case "targets":
			catalog, err := config.LoadTargets(path)
			if err != nil {
				log.Fatal(err)
			}
			if err := catalog.Validate(); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
