// Command framegraph runs dataflow pipelines defined in YAML.
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
