// Command gta manipulates streams of Generic Tagged Arrays: it creates,
// inspects, filters, and converts them, reading from files or standard
// input and writing to a file or standard output.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/c2h5oh/datasize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func main() {
	app := kingpin.New("gta", "Manipulate streams of Generic Tagged Arrays.")
	verbose := app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
	iobuf := app.Flag("iobuf", "I/O buffer size for element streaming.").Default("1MiB").String()

	infoCmd := newInfoCommand(app)
	createCmd := newCreateCommand(app)
	fillCmd := newFillCommand(app)
	fromRawCmd := newFromRawCommand(app)
	toRawCmd := newToRawCommand(app)
	reverseCmd := newReverseCommand(app)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	var bufSize datasize.ByteSize
	if err := bufSize.UnmarshalText([]byte(*iobuf)); err != nil {
		level.Error(logger).Log("msg", "invalid --iobuf", "err", err)
		os.Exit(1)
	}

	env := &cmdEnv{logger: logger, bufSize: int(bufSize.Bytes())}

	var err error
	switch command {
	case infoCmd.clause.FullCommand():
		err = infoCmd.run(env)
	case createCmd.clause.FullCommand():
		err = createCmd.run(env)
	case fillCmd.clause.FullCommand():
		err = fillCmd.run(env)
	case fromRawCmd.clause.FullCommand():
		err = fromRawCmd.run(env)
	case toRawCmd.clause.FullCommand():
		err = toRawCmd.run(env)
	case reverseCmd.clause.FullCommand():
		err = reverseCmd.run(env)
	}
	if err != nil {
		level.Error(logger).Log("msg", "command failed", "err", err)
		os.Exit(1)
	}
}

// cmdEnv carries the settings shared by all commands.
type cmdEnv struct {
	logger  log.Logger
	bufSize int
}

// parseDimensions parses a comma-separated list of dimension sizes.
func parseDimensions(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	dims := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid dimension size %q", p)
		}
		dims[i] = v
	}
	return dims, nil
}
