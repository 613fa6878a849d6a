//go:build windows

// Command find_simconnect reports where flightdeck would load SimConnect.dll from.
package main

import (
	"flag"
	"fmt"
	"os"

	"flightdeck/pkg/sim/simconnect"
)

func main() {
	sdk := flag.String("sdk", "", "MSFS SDK root (defaults to MSFS_SDK)")
	flag.Parse()

	fmt.Println("=== SimConnect.dll Detection ===")
	if *sdk == "" {
		fmt.Printf("MSFS_SDK = %q\n", os.Getenv("MSFS_SDK"))
	}

	path, err := simconnect.FindDLL(*sdk)
	if err != nil {
		fmt.Println("NOT FOUND:", err)
		os.Exit(1)
	}
	fmt.Println("Found:", path)

	if err := simconnect.LoadDLL(path); err != nil {
		fmt.Println("Load failed:", err)
		os.Exit(1)
	}
	fmt.Println("Loaded OK")
}
