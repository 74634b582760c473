package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/jbaikge/boneless/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	root := newRootCmd(cfg.GatewayURL, os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
