package main

import (
	"context"
	"oral-messages-simulation/cmd"
	"oral-messages-simulation/impl/utils"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if e := cmd.Execute(ctx); e != nil {
		stop()
		utils.ExitWithError(utils.NewLogger(os.Stderr), e.Error())
	}
}
