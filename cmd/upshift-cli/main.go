package main

import (
	"github.com/robotalks/upshift/pkg/cli/sh"
	"github.com/robotalks/upshift/pkg/config"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
