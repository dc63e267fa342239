// Command prune solves QAP, TSP, job-shop, RCPSP and MAX-SAT instances by
// constraint programming.
//
// Usage:
//
//	prune solve --kind KIND [flags] FILE
//	prune inspect --kind KIND FILE
//	prune history --db FILE [INSTANCE]
//
// Run prune help COMMAND for the flags of each command.
package main

import (
	"log"
	"os"

	"github.com/cespare/prune/internal/cli"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("prune: ")
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Print(err)
		os.Exit(cli.GetExitCode(err))
	}
}
