// main is the entry point of the tsfeat CLI.
package main

import (
	"os"

	"github.com/huangsam/tsfeat/cmd"
	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
