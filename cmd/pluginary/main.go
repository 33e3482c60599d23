// Command pluginary discovers installed VST3 and Audio Unit plug-ins,
// probes each in an isolated worker subprocess, and maintains a durable
// catalog that survives worker crashes and interrupted scans.
package main

import (
	"os"

	"github.com/twardoch/pedalboard-pluginary/cmd/pluginary/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
