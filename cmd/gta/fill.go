package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"

	"github.com/tagarray/go-gta/gta"
	"github.com/tagarray/go-gta/stream"
)

type fillCommand struct {
	clause *kingpin.CmdClause
	value  *string
	output *string
	files  *[]string
}

func newFillCommand(app *kingpin.Application) *fillCommand {
	c := &fillCommand{}
	c.clause = app.Command("fill", "Overwrite all elements of the input arrays with a constant value.")
	c.value = c.clause.Flag("value", "Comma-separated component values.").Required().String()
	c.output = c.clause.Flag("output", "Output file (standard output if empty).").Short('o').String()
	c.files = c.clause.Arg("files", "Input files (standard input if none).").Strings()
	return c
}

func (c *fillCommand) run(env *cmdEnv) error {
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

		out := hdr.Clone()
		out.SetBigEndian(gta.HostBigEndian())
		if _, err := loop.Write(out); err != nil {
			return err
		}
		// Arrays without elements or without components carry no data.
		if hdr.Elements() == 0 || hdr.ElementSize() == 0 {
			continue
		}

		// The fill value is parsed per array: the component layout may
		// differ between arrays in the stream.
		comps := make([]gta.Component, hdr.NumComponents())
		for i := range comps {
			comps[i] = *hdr.Component(i)
		}
		elem, err := stream.ParseValueList(*c.value, comps)
		if err != nil {
			return err
		}

		el := &stream.ElementLoop{MaxBufSize: env.bufSize}
		if err := loop.StartElementLoop(el, &hdr, out); err != nil {
			return err
		}
		for i := uint64(0); i < hdr.Elements(); i++ {
			if _, err := el.Read(1); err != nil {
				return err
			}
			if err := el.Write(elem, 1); err != nil {
				return err
			}
		}
		if err := el.Finish(); err != nil {
			return err
		}
		level.Debug(env.logger).Log("msg", "filled array", "array", name, "elements", hdr.Elements())
	}
	return loop.Finish()
}
