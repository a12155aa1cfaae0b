// Package main is the entry point for the fargate2k8s migration tool.
package main

import (
	"fmt"
	"os"

	"github.com/patrg444/Cygni/cmd/fargate2k8s/cmd"
	"k8s.io/klog/v2"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer klog.Flush()

	cmd.SetVersion(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		klog.Flush()
		os.Exit(1)
	}
}
