package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/tagarray/go-gta/gta"
	"github.com/tagarray/go-gta/stream"
)

type createCommand struct {
	clause     *kingpin.CmdClause
	dimensions *string
	components *string
	value      *string
	tags       *map[string]string
	count      *uint64
	output     *string
}

func newCreateCommand(app *kingpin.Application) *createCommand {
	c := &createCommand{}
	c.clause = app.Command("create", "Create arrays filled with a constant value.")
	c.dimensions = c.clause.Flag("dimensions", "Comma-separated dimension sizes.").Short('d').Required().String()
	c.components = c.clause.Flag("components", "Comma-separated component types.").Short('c').Required().String()
	c.value = c.clause.Flag("value", "Comma-separated component values (default all zero).").String()
	c.tags = c.clause.Flag("tag", "Array tag NAME=VALUE (repeatable).").StringMap()
	c.count = c.clause.Flag("count", "Number of arrays to create.").Short('n').Default("1").Uint64()
	c.output = c.clause.Flag("output", "Output file (standard output if empty).").Short('o').String()
	return c
}

func (c *createCommand) run(env *cmdEnv) error {
	dims, err := parseDimensions(*c.dimensions)
	if err != nil {
		return err
	}
	comps, err := stream.ParseTypeList(*c.components)
	if err != nil {
		return err
	}
	hdr := gta.NewHeader()
	if err := hdr.SetDimensions(dims...); err != nil {
		return err
	}
	if err := hdr.SetComponents(comps...); err != nil {
		return err
	}
	for name, value := range *c.tags {
		if err := hdr.Tags.Set(name, value); err != nil {
			return err
		}
	}

	elem := make([]byte, hdr.ElementSize())
	if *c.value != "" {
		elem, err = stream.ParseValueList(*c.value, comps)
		if err != nil {
			return err
		}
	}

	loop := &stream.ArrayLoop{}
	if err := loop.Start(nil, *c.output); err != nil {
		return err
	}
	defer loop.Finish()

	if hdr.ElementSize() == 0 {
		for i := uint64(0); i < *c.count; i++ {
			if _, err := loop.Write(hdr); err != nil {
				return err
			}
		}
		return loop.Finish()
	}

	// One buffer of repeated fill elements, reused for every chunk.
	chunk := uint64(env.bufSize) / hdr.ElementSize()
	if chunk == 0 {
		chunk = 1
	}
	if chunk > hdr.Elements() && hdr.Elements() > 0 {
		chunk = hdr.Elements()
	}
	buf := make([]byte, chunk*hdr.ElementSize())
	for off := uint64(0); off < chunk; off++ {
		copy(buf[off*hdr.ElementSize():], elem)
	}

	for i := uint64(0); i < *c.count; i++ {
		name, err := loop.Write(hdr)
		if err != nil {
			return err
		}
		var st gta.IOState
		for left := hdr.Elements(); left > 0; {
			n := chunk
			if n > left {
				n = left
			}
			if err := hdr.WriteElements(&st, loop.FileOut(), n, buf); err != nil {
				return errors.Wrapf(err, "%s", name)
			}
			left -= n
		}
		level.Debug(env.logger).Log("msg", "created array", "array", name, "elements", hdr.Elements())
	}
	return loop.Finish()
}
