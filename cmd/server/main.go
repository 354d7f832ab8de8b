package main

import (
	"context"
	"log"
	"os"

	"github.com/dvoronkov/petvault/internal/buildinfo"
	"github.com/dvoronkov/petvault/internal/server"
	"github.com/dvoronkov/petvault/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
