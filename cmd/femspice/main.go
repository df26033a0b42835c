package main

import (
	"os"

	"github.com/edp1096/femspice/cmd/femspice/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
