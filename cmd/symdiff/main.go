// Command symdiff differentiates and simplifies JSON expression trees.
//
// Usage:
//
//	symdiff diff --var x tree.json
//	echo '{"type":"sym","name":"x"}' | symdiff simplify -
package main

import (
	"os"

	"github.com/njchilds90/symdiff/cmd/symdiff/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
