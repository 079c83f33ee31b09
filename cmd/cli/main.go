package main

import (
	"github.com/mchmarny/pwdetect/pkg/cli"
)

func main() {
	cli.Execute()
}
