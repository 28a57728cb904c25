// Command docstore is the schema administration tool for DocStore-backed
// services. It reads a YAML config naming the connection and the entity
// tables, then bootstraps (or drops) each table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/datastore/postgres"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configFlag  = flag.String("config", "docstore.yaml", "Path to the schema config file")
	dropFlag    = flag.Bool("drop", false, "Drop the configured tables instead of creating them")
)

// schemaConfig is the on-disk shape of the schema config file.
type schemaConfig struct {
	Connection postgres.ConnConfig `yaml:"connection"`
	Tables     []string            `yaml:"tables"`
}

func main() {
	// Parse flags early to catch version flag
	flag.Parse()

	// Handle version flag
	if *versionFlag || *vFlag {
		info := docstore.GetVersionInfo()
		fmt.Printf("DocStore schema tool version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(*configFlag, *dropFlag); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string, drop bool) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, proceeding with environment variables")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if len(cfg.Tables) == 0 {
		return fmt.Errorf("config %s names no tables", configPath)
	}

	ctx := context.Background()
	cache := postgres.NewPoolCache()
	defer cache.Close()

	pool, err := cache.Connect(ctx, &cfg.Connection)
	if err != nil {
		return err
	}

	for _, table := range cfg.Tables {
		if drop {
			if err := postgres.DropTable(ctx, pool, table); err != nil {
				return err
			}
			log.Printf("dropped table %s", table)
			continue
		}
		if err := postgres.EnsureTable(ctx, pool, table); err != nil {
			return err
		}
		log.Printf("ensured table %s", table)
	}
	return nil
}

func loadConfig(path string) (*schemaConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &schemaConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Environment variables fill in whatever the file leaves blank,
	// so credentials stay out of checked-in configs.
	env := postgres.FromEnv()
	if cfg.Connection.Host == "" {
		cfg.Connection.Host = env.Host
	}
	if cfg.Connection.Port == 0 {
		cfg.Connection.Port = env.Port
	}
	if cfg.Connection.User == "" {
		cfg.Connection.User = env.User
	}
	if cfg.Connection.Password == "" {
		cfg.Connection.Password = env.Password
	}
	if cfg.Connection.Database == "" {
		cfg.Connection.Database = env.Database
	}
	if cfg.Connection.SSLMode == "" {
		cfg.Connection.SSLMode = env.SSLMode
	}
	return cfg, nil
}
