package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"

	"github.com/gekko3d/voldata"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

func main() {
	app := cli.NewApp()
	app.Name = "voltool"
	app.Usage = "inspect, convert and generate volumetric grid archives"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		voldata.SetLogger(voldata.NewDefaultLogger("voltool", c.GlobalBool("debug")))
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "info",
			Usage:     "print a summary of a grid file",
			ArgsUsage: "<path>",
			Action:    runInfo,
		},
		{
			Name:      "convert",
			Usage:     "load a grid file and write it in another representation",
			ArgsUsage: "<in> <out>",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "to",
					Value: "brick",
					Usage: "target representation: dense or brick",
				},
			},
			Action: runConvert,
		},
		{
			Name:      "generate",
			Usage:     "write a procedural sphere volume as a grid archive",
			ArgsUsage: "<out>",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "size",
					Value: 64,
					Usage: "extent of the cubic index-space box",
				},
				cli.Float64Flag{
					Name:  "radius",
					Value: 24,
					Usage: "sphere radius in voxels",
				},
				cli.Float64Flag{
					Name:  "density",
					Value: 1,
					Usage: "density inside the sphere",
				},
				cli.Float64Flag{
					Name:  "falloff",
					Value: 4,
					Usage: "linear falloff shell width in voxels",
				},
				cli.StringFlag{
					Name:  "to",
					Value: "brick",
					Usage: "target representation: dense or brick",
				},
			},
			Action: runGenerate,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func parseGridType(s string) (voldata.GridType, error) {
	switch s {
	case "dense":
		return voldata.GridTypeDense, nil
	case "brick":
		return voldata.GridTypeBrick, nil
	}
	return 0, fmt.Errorf("unknown representation %q", s)
}

func runInfo(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("info: expected <path>", 1)
	}
	g, err := voldata.LoadGridFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	fmt.Println(voldata.GridString(g))
	if brick, ok := g.(*voldata.BrickGrid); ok {
		fmt.Println(brick.String())
	}
	return nil
}

func runConvert(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("convert: expected <in> <out>", 1)
	}
	target, err := parseGridType(c.String("to"))
	if err != nil {
		return err
	}
	src, err := voldata.LoadGridFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	dst, err := voldata.Convert(src, target)
	if err != nil {
		return err
	}
	return voldata.WriteGrid(dst, c.Args().Get(1))
}

func runGenerate(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("generate: expected <out>", 1)
	}
	target, err := parseGridType(c.String("to"))
	if err != nil {
		return err
	}
	size := c.Int("size")
	half := float32(size) / 2
	sphere := voldata.NewSphereGrid(
		[3]int{size, size, size},
		mgl32.Vec3{half, half, half},
		float32(c.Float64("radius")),
		float32(c.Float64("density")),
		float32(c.Float64("falloff")),
	)
	dst, err := voldata.Convert(sphere, target)
	if err != nil {
		return err
	}
	return voldata.WriteGrid(dst, c.Args().Get(0))
}
