// main is the entry point of the repostats CLI.
package main

import (
	"github.com/huangsam/repostats/cmd"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseCaching()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("repostats failed", err)
	}
}
