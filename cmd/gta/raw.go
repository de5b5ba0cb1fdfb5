package main

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/tagarray/go-gta/gta"
	"github.com/tagarray/go-gta/stream"
)

type fromRawCommand struct {
	clause     *kingpin.CmdClause
	dimensions *string
	components *string
	bigEndian  *bool
	output     *string
	input      *string
}

func newFromRawCommand(app *kingpin.Application) *fromRawCommand {
	c := &fromRawCommand{}
	c.clause = app.Command("from-raw", "Convert raw binary data to a GTA.")
	c.dimensions = c.clause.Flag("dimensions", "Comma-separated dimension sizes.").Short('d').Required().String()
	c.components = c.clause.Flag("components", "Comma-separated component types.").Short('c').Required().String()
	c.bigEndian = c.clause.Flag("big-endian", "Input data is big-endian.").Bool()
	c.output = c.clause.Flag("output", "Output file (standard output if empty).").Short('o').String()
	c.input = c.clause.Arg("input", "Raw input file.").Required().String()
	return c
}

func (c *fromRawCommand) run(env *cmdEnv) error {
	dims, err := parseDimensions(*c.dimensions)
	if err != nil {
		return err
	}
	comps, err := stream.ParseTypeList(*c.components)
	if err != nil {
		return err
	}

	// hdrIn describes the raw input layout including its byte order;
	// the written array is normalized to host order by the element loop.
	hdrIn := gta.NewHeader()
	if err := hdrIn.SetDimensions(dims...); err != nil {
		return err
	}
	if err := hdrIn.SetComponents(comps...); err != nil {
		return err
	}
	hdrIn.SetBigEndian(*c.bigEndian)
	hdrOut := hdrIn.Clone()
	hdrOut.SetBigEndian(gta.HostBigEndian())

	raw, err := os.Open(*c.input)
	if err != nil {
		return errors.Wrapf(err, "opening %s", *c.input)
	}
	defer raw.Close()

	loop := &stream.ArrayLoop{}
	if err := loop.Start(nil, *c.output); err != nil {
		return err
	}
	defer loop.Finish()

	name, err := loop.Write(hdrOut)
	if err != nil {
		return err
	}
	el := &stream.ElementLoop{MaxBufSize: env.bufSize}
	if err := el.Start(hdrIn, *c.input, raw, hdrOut, name, loop.FileOut()); err != nil {
		return err
	}
	if err := pumpElements(el, hdrIn.Elements(), env.bufSize, int(hdrIn.ElementSize())); err != nil {
		return err
	}
	if err := el.Finish(); err != nil {
		return err
	}
	level.Debug(env.logger).Log("msg", "converted raw data", "array", name, "elements", hdrIn.Elements())
	return loop.Finish()
}

type toRawCommand struct {
	clause    *kingpin.CmdClause
	bigEndian *bool
	output    *string
	input     *string
}

func newToRawCommand(app *kingpin.Application) *toRawCommand {
	c := &toRawCommand{}
	c.clause = app.Command("to-raw", "Convert a GTA to raw binary data.")
	c.bigEndian = c.clause.Flag("big-endian", "Write big-endian raw data.").Bool()
	c.output = c.clause.Flag("output", "Raw output file.").Short('o').Required().String()
	c.input = c.clause.Arg("input", "Input file (standard input if empty).").String()
	return c
}

func (c *toRawCommand) run(env *cmdEnv) error {
	var files []string
	if *c.input != "" {
		files = []string{*c.input}
	}
	raw, err := os.Create(*c.output)
	if err != nil {
		return errors.Wrapf(err, "opening %s", *c.output)
	}
	defer raw.Close()

	loop := &stream.ArrayLoop{Stdout: io.Discard}
	if err := loop.Start(files, ""); err != nil {
		return err
	}
	defer loop.Finish()

	var hdr gta.Header
	name, ok, err := loop.Read(&hdr)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no array in input")
	}
	hdrOut := hdr.Clone()
	hdrOut.SetBigEndian(*c.bigEndian)

	el := &stream.ElementLoop{MaxBufSize: env.bufSize}
	if err := el.Start(&hdr, name, loop.FileIn(), hdrOut, *c.output, raw); err != nil {
		return err
	}
	if err := pumpElements(el, hdr.Elements(), env.bufSize, int(hdr.ElementSize())); err != nil {
		return err
	}
	if err := el.Finish(); err != nil {
		return err
	}
	level.Debug(env.logger).Log("msg", "exported raw data", "array", name, "elements", hdr.Elements())
	if err := raw.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", *c.output)
	}
	return loop.Finish()
}

// pumpElements streams all elements through an element loop in chunks
// sized to the configured I/O buffer.
func pumpElements(el *stream.ElementLoop, total uint64, bufSize, elemSize int) error {
	chunk := uint64(bufSize / elemSize)
	if chunk == 0 {
		chunk = 1
	}
	for left := total; left > 0; {
		n := chunk
		if n > left {
			n = left
		}
		p, err := el.Read(n)
		if err != nil {
			return err
		}
		if err := el.Write(p, n); err != nil {
			return err
		}
		left -= n
	}
	return nil
}
