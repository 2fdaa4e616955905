package main

import (
	"log"

	"github.com/anoixa/image-hoster/config"

	"github.com/anoixa/image-hoster/cmd"
)

func main() {
	log.Print(config.BuildInfo())
	cmd.Execute()
}
