// Command parquet2root streams one or more Parquet files into a single
// ROOT TTree.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
