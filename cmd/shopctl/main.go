package main

import (
	"os"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
