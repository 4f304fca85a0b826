package main

import "github.com/khanhnv2901/seca-scan/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
