package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	if err := _main(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		var withExitCode *ErrorWithExitCode
		if errors.As(err, &withExitCode) {
			os.Exit(withExitCode.ExitCode)
		}
		os.Exit(1)
	}
}

func _main() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var cli CLI
	if err := cli.Parse(os.Args[1:]); err != nil {
		return &ErrorWithExitCode{Err: err, ExitCode: 2}
	}
	app, err := New(cli)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
