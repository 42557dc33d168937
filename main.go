package main

import (
	"os"
	"runtime/debug"

	"github.com/web4asset/w4t/cmd"
	"github.com/web4asset/w4t/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("NODE", "NODE CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
