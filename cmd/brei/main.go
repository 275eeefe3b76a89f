package main

import "brei/pkg/lib"

func main() {
	if err := rootCmd.Execute(); err != nil {
		lib.Fatal(err, 1)
	}
}
