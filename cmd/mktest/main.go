// Command mktest generates a test file in which each CHUNK-sized block is
// serially numbered, for exercising dd-parallel's ordering guarantees
// (spec §6 "Auxiliary tool mktest").
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/boredzo/dd-parallel/internal/format"
	"github.com/boredzo/dd-parallel/internal/progresssignal"
	"github.com/boredzo/dd-parallel/internal/sizeparse"
	"github.com/boredzo/dd-parallel/internal/testblock"
	"github.com/boredzo/dd-parallel/pipeline"
)

const (
	exOK        = 0
	exUsage     = 64
	exCantCreat = 73
	exIOErr     = 74
)

func main() {
	app := cli.NewApp()
	app.Name = "mktest"
	app.Usage = "generate a serially-numbered test file"
	app.ArgsUsage = "<size> <output-path-or-->"
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exUsage)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		cli.ShowAppHelp(c)
		os.Exit(exUsage)
	}

	desiredSize, err := sizeparse.Parse(c.Args().Get(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad size:", err)
		os.Exit(exUsage)
	}

	outputPath := c.Args().Get(1)
	out := os.Stdout
	if !sizeparse.IsStdoutPath(outputPath) {
		out, err = os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create:", err)
			os.Exit(exCantCreat)
		}
		defer out.Close()
	}

	buf := make([]byte, pipeline.DefaultChunkSize)

	var totalCopied uint64
	var serial uint32
	startedAt := time.Now()

	render := func(final bool) string {
		elapsed := time.Since(startedAt).Seconds()
		var rate float64
		if elapsed > 0 {
			rate = float64(totalCopied) / elapsed
		}
		verb := "Have copied"
		if final {
			verb = "Copied"
		}
		return fmt.Sprintf("%s %s in %s (overall avg %s/sec)",
			verb, format.ByteCount(totalCopied), format.Interval(elapsed), format.ByteCount(uint64(rate)))
	}

	stop := progresssignal.Install(os.Stdout, func() string { return render(false) })
	defer stop()

	status := exOK
	for totalCopied < desiredSize {
		testblock.Fill(buf, serial)
		n, writeErr := out.Write(buf)
		totalCopied += uint64(n)
		if writeErr != nil {
			fmt.Fprintf(os.Stderr, "Write of block #%d failed: %v\n", serial, writeErr)
			status = exIOErr
			break
		}
		serial++
	}

	if out != os.Stdout {
		if truncErr := out.Truncate(int64(totalCopied)); truncErr != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(truncErr, "truncate output"))
		}
	}

	fmt.Println(render(true))
	os.Exit(status)
	return nil
}
