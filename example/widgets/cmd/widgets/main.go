// Command widgets manages widgets stored in PostgreSQL.
//
//	widgets migrate
//	widgets create Sprocket --stock 12 --color red --dimension width=5cm
//	widgets colors add <id> blue
//	widgets show <id>
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/AntonStoeckl/attribute-callbacks-go/example/widgets/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx)
	stop()

	os.Exit(code)
}
