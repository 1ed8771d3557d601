// Command exceptiond serves a demo API behind the exception filter and lists
// the error codes a configuration registers.
package main

import (
	"os"

	"github.com/Abraxas-365/exceptionx/logx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logx.Error("%v", err)
		os.Exit(1)
	}
}
