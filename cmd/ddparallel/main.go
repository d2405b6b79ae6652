// Command dd-parallel copies one file to another with reads and writes
// overlapped on separate goroutines (spec §1, §6).
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/boredzo/dd-parallel/internal/progresssignal"
	"github.com/boredzo/dd-parallel/pipeline"
)

// Exit codes mirror BSD sysexits.h, matching the original's EX_* usage
// (spec §6, §7).
const (
	exOK        = 0
	exUsage     = 64
	exOSErr     = 71
	exNoInput   = 66
	exCantCreat = 73
	exIOErr     = 74
)

func main() {
	app := cli.NewApp()
	app.Name = "dd-parallel"
	app.Usage = "copy one file to another with overlapped reads and writes"
	app.ArgsUsage = "<input-path> <output-path>"
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exUsage)
	}
}

func run(c *cli.Context) (err error) {
	if c.NArg() != 2 {
		cli.ShowAppHelp(c)
		os.Exit(exUsage)
	}
	inputPath := c.Args().Get(0)
	outputPath := c.Args().Get(1)

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Development = false
	logConfig.Level.SetLevel(zap.InfoLevel)
	logger, err := logConfig.Build()
	if err != nil {
		return errors.Wrap(err, "failed to build logger")
	}
	defer logger.Sync()

	in, err := os.OpenFile(inputPath, os.O_RDONLY, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "no input:", err)
		os.Exit(exNoInput)
	}
	defer in.Close()

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot create:", err)
		os.Exit(exCantCreat)
	}
	defer out.Close()

	// Allocation failure (spec §7 item 3) can't be intercepted as an
	// ordinary error the way malloc returning NULL can in C: the Go
	// runtime aborts the process on out-of-memory. This recover covers
	// a panic on this goroutine, such as in buffer setup or the
	// supervisor's own bookkeeping, mapping it to the same "OS error" exit
	// class the original uses for allocation failure. A panic inside the
	// reader or writer goroutine is not recovered here.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "OS error:", r)
			os.Exit(exOSErr)
		}
	}()

	super := pipeline.NewSupervisor(pipeline.DefaultChunkSize, logger)

	stop := progresssignal.Install(os.Stdout, func() string {
		return super.Pipeline.Snapshot(false).Render()
	})
	defer stop()

	result := super.Run(in, out)

	fmt.Println(super.Pipeline.Snapshot(true).Render())

	switch result.Class {
	case pipeline.ExitOK:
		return nil
	case pipeline.ExitNoInput:
		fmt.Fprintln(os.Stderr, "no input:", result.Err())
		os.Exit(exNoInput)
	case pipeline.ExitIOError:
		fmt.Fprintln(os.Stderr, "I/O error:", result.Err())
		os.Exit(exIOErr)
	default:
		os.Exit(exOSErr)
	}
	return nil
}
