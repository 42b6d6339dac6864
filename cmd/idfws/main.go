// Command idfws validates, names and snapshots IDF building models against a
// YAML schema.
package main

import (
	"os"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}
