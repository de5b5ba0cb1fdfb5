package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"

	"github.com/tagarray/go-gta/gta"
	"github.com/tagarray/go-gta/stream"
)

type infoCommand struct {
	clause *kingpin.CmdClause
	files  *[]string
	tags   *bool
}

func newInfoCommand(app *kingpin.Application) *infoCommand {
	c := &infoCommand{}
	c.clause = app.Command("info", "Print information about GTA arrays.")
	c.files = c.clause.Arg("files", "Input files (standard input if none).").Strings()
	c.tags = c.clause.Flag("tags", "Also print tags.").Bool()
	return c
}

func (c *infoCommand) run(env *cmdEnv) error {
	loop := &stream.ArrayLoop{Stdout: io.Discard}
	if err := loop.Start(*c.files, ""); err != nil {
		return err
	}
	defer loop.Finish()

	heading := color.New(color.Bold)
	var hdr gta.Header
	for {
		name, ok, err := loop.Read(&hdr)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		level.Debug(env.logger).Log("msg", "read header", "array", name)

		heading.Fprintln(os.Stdout, name+":")
		fmt.Fprintf(os.Stdout, "  elements:  %s (%s of data)\n",
			humanize.Comma(int64(hdr.Elements())), humanize.IBytes(hdr.DataSize()))
		fmt.Fprintf(os.Stdout, "  dimensions:")
		if hdr.NumDimensions() == 0 {
			fmt.Fprintf(os.Stdout, " none")
		}
		for i := 0; i < hdr.NumDimensions(); i++ {
			if i > 0 {
				fmt.Fprintf(os.Stdout, " x")
			}
			fmt.Fprintf(os.Stdout, " %d", hdr.DimensionSize(i))
		}
		fmt.Fprintln(os.Stdout)
		fmt.Fprintf(os.Stdout, "  components:")
		for i := 0; i < hdr.NumComponents(); i++ {
			comp := hdr.Component(i)
			fmt.Fprintf(os.Stdout, " %s", stream.FormatType(comp.Type, comp.Size()))
		}
		if hdr.NumComponents() == 0 {
			fmt.Fprintf(os.Stdout, " none")
		}
		fmt.Fprintln(os.Stdout)
		if stream.NeedsSwap(&hdr) {
			fmt.Fprintln(os.Stdout, "  byte order: foreign (needs swapping)")
		}
		if *c.tags {
			printTags(os.Stdout, "array", &hdr.Tags)
			for i := 0; i < hdr.NumDimensions(); i++ {
				printTags(os.Stdout, fmt.Sprintf("dimension %d", i), &hdr.Dimension(i).Tags)
			}
			for i := 0; i < hdr.NumComponents(); i++ {
				printTags(os.Stdout, fmt.Sprintf("component %d", i), &hdr.Component(i).Tags)
			}
		}

		if err := loop.SkipData(&hdr); err != nil {
			return err
		}
	}
	return loop.Finish()
}

func printTags(w io.Writer, what string, tags *gta.TagList) {
	for i := 0; i < tags.Len(); i++ {
		t := tags.At(i)
		fmt.Fprintf(w, "  %s tag: %s=%s\n", what, t.Name, t.Value)
	}
}
