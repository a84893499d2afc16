// Anoncreds setup CLI
// Bootstraps an issuer: schema, CL keys, and optionally the revocation
// accumulator, writing the public artifacts as JSON.

package main

import (
	"fmt"
	"os"

	"github.com/MRJCrunch/anoncreds/cmd/anoncreds-setup/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
