package main

import (
	"context"
	"os"

	"github.com/habiliai/answerdesk/cmd/answerdesk/cmd"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
