package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/dmitrijs2005/loginetl/internal/flagx"
)

var knownFlags = []string{"-q", "-e", "-g", "-m", "-w", "-r", "-t", "-s", "-x", "-d", "-l", "-v", "-o", "-b"}

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-q string   queue URL
//	-e string   queue service endpoint (e.g. "http://localhost:4566")
//	-g string   AWS region
//	-m int      max messages per poll
//	-w int      long-poll wait, seconds
//	-r int      probe attempts
//	-t int      delay between probe attempts, seconds
//	-s string   masking passphrase
//	-x string   cipher mode: ecb or siv
//	-d string   PostgreSQL DSN
//	-l string   log backend: slog or zap
//	-v string   log level
//	-o string   log file, stderr when empty
//	-b string   S3 bucket for rejected messages
//
// Arguments that are not listed above (such as -c) are filtered out first
// with flagx.FilterArgs.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("loginetl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.QueueURL, "q", config.QueueURL, "queue URL")
	fs.StringVar(&config.QueueEndpoint, "e", config.QueueEndpoint, "queue service endpoint")
	fs.StringVar(&config.Region, "g", config.Region, "AWS region")
	fs.IntVar(&config.MaxMessages, "m", config.MaxMessages, "max messages per poll")
	waitTime := fs.Int("w", int(config.WaitTime.Seconds()), "long-poll wait (in seconds)")
	fs.IntVar(&config.ProbeAttempts, "r", config.ProbeAttempts, "probe attempts")
	probeDelay := fs.Int("t", int(config.ProbeDelay.Seconds()), "delay between probe attempts (in seconds)")
	fs.StringVar(&config.Passphrase, "s", config.Passphrase, "masking passphrase")
	fs.StringVar(&config.CipherMode, "x", config.CipherMode, "cipher mode (ecb, siv)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog, zap)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "o", config.LogFile, "log file")
	fs.StringVar(&config.RejectBucket, "b", config.RejectBucket, "S3 bucket for rejected messages")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	// Whole seconds only; sub-second values from JSON survive when the flag
	// is not given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			config.WaitTime = time.Duration(*waitTime) * time.Second
		case "t":
			config.ProbeDelay = time.Duration(*probeDelay) * time.Second
		}
	})

	return nil
}
