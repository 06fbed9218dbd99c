// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/config"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/server"
)

func main() {
	cmd := &cli.Command{
		Name:   "server",
		Usage:  "Start the IIoT FDI detection API",
		Flags:  config.Flags(),
		Action: server.Run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
