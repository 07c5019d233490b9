// This program computes selectors and builds dispatch tables from a
// manifest of function signatures.
package main

import "github.com/ardanlabs/dispatch/app/tooling/selectors/cmd"

func main() {
	cmd.Execute()
}
