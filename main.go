package main

import (
	"os"

	"github.com/SkylineCommunications/idpcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
