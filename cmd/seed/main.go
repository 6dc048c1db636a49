package main

import (
	"context"
	"flag"
	"os"

	"quizarena/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	flag.StringVar(&path, "config", path, "path to YAML config")
	flag.Parse()

	if err := cli.RunSeed(context.Background(), path); err != nil {
		cli.Fatal(err)
	}
}
