package main

import (
	"context"
	"fmt"
	"os"

	"github.com/qrseal/qrseal/internal/commands"
)

func main() {
	if err := commands.NewApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
