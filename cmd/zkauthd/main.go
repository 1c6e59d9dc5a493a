// Command zkauthd serves the Chaum-Pedersen zero-knowledge authentication
// verifier described by this module.
package main

import (
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/allsmog/zkauth-go/cmd/zkauthd/cli"
)

func main() {
	opts, err := cli.ParseOptions(os.Args[1:])
	if err != nil {
		log.Fatalf("zkauthd: %v", err)
	}

	color.Blue("zkauthd: zero-knowledge password-free authentication verifier")

	if err := cli.Run(opts); err != nil {
		color.Red("zkauthd: %v", err)
		os.Exit(1)
	}
}
