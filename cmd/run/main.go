package main

import "os"

// 主控台估計入口，參數見 support.go 的 parseFlags
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
