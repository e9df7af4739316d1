// Command fdtransport runs the transport models and dumps their time layers as YAML
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
