package main

import (
	"fmt"
	"os"

	"github.com/payshield/payshield/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "payshield: %v\n", err)
		os.Exit(1)
	}
}
