// Command esglens builds ESG reports and serves the dashboard API.
package main

import (
	"fmt"
	"os"

	"github.com/esglens/esglens/internal/cli"
	"github.com/esglens/esglens/pkg/version"
)

func run() error {
	return cli.NewRootCmd(version.Describe()).Execute()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
