package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rogue-gym/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered engines",
	Long:  `Shows every engine an environment can be built on.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	engines := registry.List()

	if len(engines) == 0 {
		fmt.Println("No engines registered.")
		return
	}

	fmt.Println("Available engines:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, e := range engines {
		maxIDLen = max(maxIDLen, len(e.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, e := range engines {
		fmt.Printf("  %-*s  %s\n", maxIDLen, e.ID, e.Title)
	}

	fmt.Println()
	fmt.Println("Run 'roguegym play' to play.")
}
