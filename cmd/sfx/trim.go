package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/dudk/sfx/chain"
	"github.com/dudk/sfx/log"
	"github.com/dudk/sfx/mp3"
	"github.com/dudk/sfx/trim"
	"github.com/dudk/sfx/wav"
)

const defaultBufferSize = 512

type trimCommand struct {
	in      string
	out     string
	bitRate int
	quality int
	verbose bool
	flags   *flag.FlagSet
}

// Implement command interface
func (cmd *trimCommand) Name() string {
	return "trim"
}

func (cmd *trimCommand) Help() string {
	return "Cut positions out of a wav file: trim -in in.wav -out out.wav {[=|-]position}"
}

func (cmd *trimCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input wav file (required)")
	fs.StringVar(&cmd.out, "out", "", "output file, .wav or .mp3 (required)")
	fs.IntVar(&cmd.bitRate, "bitrate", 192, "mp3 bit rate")
	fs.IntVar(&cmd.quality, "quality", 2, "mp3 encoding quality")
	fs.BoolVar(&cmd.verbose, "v", false, "dump the bound chain before running")
	cmd.flags = fs
}

func (cmd *trimCommand) Run() error {
	if err := cmd.validate(); err != nil {
		return err
	}

	pump, err := wav.NewPump(cmd.in)
	if err != nil {
		return err
	}

	effect, err := trim.New(cmd.flags.Args()...)
	if err != nil {
		return err
	}

	var sink chain.Sink
	switch {
	case strings.HasSuffix(cmd.out, ".mp3"):
		sink = mp3.NewSink(cmd.out, cmd.bitRate, cmd.quality, pump.BitDepth())
	default:
		sink = wav.NewSink(cmd.out, pump.BitDepth())
	}

	c, err := chain.New(defaultBufferSize, pump, sink,
		chain.WithEffects(effect),
		chain.WithLogger(log.GetLogger()),
	)
	if err != nil {
		return err
	}
	if cmd.verbose {
		spew.Dump(c.Properties())
	}
	return c.Run()
}

func (cmd *trimCommand) validate() error {
	var message string
	if cmd.in == "" {
		message += "Missing -in required flag\n"
	}
	if cmd.out == "" {
		message += "Missing -out required flag\n"
	}
	if len(cmd.flags.Args()) == 0 {
		message += "Missing trim positions\n"
	}
	if message != "" {
		return fmt.Errorf(message)
	}
	return nil
}
