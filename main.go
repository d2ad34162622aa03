package main

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/decash/cmd"
	"github.com/mezonai/decash/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("DECASH CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
