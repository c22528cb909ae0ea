// Command rpcdemo runs the RPC demo server and calls its procedures.
//
//	rpcdemo serve
//	rpcdemo call hello
//	rpcdemo call greet --name World
//	rpcdemo call echo --message "hi"
//	rpcdemo call calculate --a 5 --b 3 --operation add
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
