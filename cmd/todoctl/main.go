package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fastygo/todoclient/internal/cli"
)

func main() {
	app := &cli.App{}
	if err := cli.Execute(context.Background(), app, nil); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
