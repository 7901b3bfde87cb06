package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/doctrack/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from --config, DOCTRACK_CONFIG
// or a list of well known locations. An empty result means defaults only.
func DetermineConfigPath() string {
	var configPath string

	if flag.Lookup("config") == nil {
		flag.StringVar(&configPath, "config", "", "path to config file")
	}
	if !flag.Parsed() {
		flag.Parse()
	}
	if f := flag.Lookup("config"); f != nil {
		configPath = f.Value.String()
	}

	if configPath == "" {
		configPath = env.GetString("DOCTRACK_CONFIG", "")
	}

	if configPath == "" {
		configPath = firstExisting(
			"./config.yaml",
			"./config.yml",
			"./tmp/config.yaml",
			"../../config.yaml", // keep for local dev
			"/etc/doctrack/config.yaml",
			"/app/config.yaml", // common in Docker
		)
	}

	return configPath
}

func firstExisting(candidates ...string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
