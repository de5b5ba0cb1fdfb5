package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/tagarray/go-gta/gta"
	"github.com/tagarray/go-gta/stream"
)

type reverseCommand struct {
	clause *kingpin.CmdClause
	output *string
	files  *[]string
}

func newReverseCommand(app *kingpin.Application) *reverseCommand {
	c := &reverseCommand{}
	c.clause = app.Command("reverse", "Reverse the element order of the input arrays.")
	c.output = c.clause.Flag("output", "Output file (standard output if empty).").Short('o').String()
	c.files = c.clause.Arg("files", "Input files (standard input if none).").Strings()
	return c
}

// run needs random access to each array's data: the last input element
// is the first output element. The data is spilled to a temporary
// buffer and read back block-wise from the end.
func (c *reverseCommand) run(env *cmdEnv) error {
	loop := &stream.ArrayLoop{}
	if err := loop.Start(*c.files, *c.output); err != nil {
		return err
	}
	defer loop.Finish()

	var hdr gta.Header
	for {
		name, ok, err := loop.Read(&hdr)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		buf, err := stream.BufferData(&hdr, loop.FileIn())
		if err != nil {
			return err
		}
		err = c.writeReversed(loop, buf)
		buf.Close()
		if err != nil {
			return errors.Wrapf(err, "%s", name)
		}
		level.Debug(env.logger).Log("msg", "reversed array", "array", name, "elements", hdr.Elements())
	}
	return loop.Finish()
}

func (c *reverseCommand) writeReversed(loop *stream.ArrayLoop, buf *stream.TempBuffer) error {
	hdr := buf.Header()
	if _, err := loop.Write(hdr); err != nil {
		return err
	}
	var st gta.IOState
	elem := make([]byte, hdr.ElementSize())
	for i := hdr.Elements(); i > 0; i-- {
		if err := buf.ReadElements(i-1, 1, elem); err != nil {
			return err
		}
		if err := hdr.WriteElements(&st, loop.FileOut(), 1, elem); err != nil {
			return err
		}
	}
	return nil
}
