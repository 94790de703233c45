// Package cli implements the composite command line tool.
package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/arranger"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/codec"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type options struct {
	downscale float64
}

// NewRootCmd builds the composite command. Reports go to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := options{downscale: 1}

	cmd := &cobra.Command{
		Use:   "composite IMG1 IMG2 IMG3 IMG4 OUTPUT",
		Short: "Arrange four images into one composite close to square",
		Long: `composite reads four PNG or JPEG images, picks the arrangement whose
aspect ratio is closest to 1:1 and writes it to OUTPUT. The output format
follows the OUTPUT extension; unknown extensions are written as PNG.`,
		Args:          cobra.ExactArgs(arranger.ImageCount + 1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), out, args[:arranger.ImageCount], args[arranger.ImageCount], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.downscale, "downscale", 1, "downscale factor in (0, 1], e.g. 0.5 = 50% size")
	return cmd
}

// Execute runs the command with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Stdout).ExecuteContext(ctx)
}

func run(ctx context.Context, out io.Writer, inputs []string, output string, opts options) error {
	if err := arranger.ValidateFactor(opts.downscale); err != nil {
		return err
	}

	images := make([]image.Image, 0, len(inputs))
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("input image not found: %s", path)
		}
		img, _, err := codec.DecodeFile(path)
		if err != nil {
			return err
		}
		images = append(images, img)
	}

	plan, err := arranger.MakePlan(sizesOf(images))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Portrait images: %d\n", plan.Counts.Portrait)
	fmt.Fprintf(out, "Landscape images: %d\n", plan.Counts.Landscape)
	fmt.Fprintf(out, "Square images: %d\n", plan.Counts.Square)

	result, err := arranger.BuildComposite(images, opts.downscale)
	if err != nil {
		return err
	}

	written, err := codec.EncodeFile(output, result.Image)
	if err != nil {
		return err
	}

	info, err := os.Stat(written)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Strategy: %s (layout %s, score %.3f)\n", result.StrategyUsed(), result.Layout.Root, result.Score)
	if opts.downscale != 1 {
		fmt.Fprintf(out, "Downscaled from %dx%d (%.0f%%)\n", plan.Best.Width, plan.Best.Height, opts.downscale*100)
	}
	fmt.Fprintf(out, "Composite image saved to: %s\n", written)
	fmt.Fprintf(out, "Final dimensions: %dx%d\n", result.Width, result.Height)
	fmt.Fprintf(out, "Aspect ratio: %.3f\n", float64(result.Width)/float64(result.Height))
	fmt.Fprintf(out, "File size: %s\n", humanize.Bytes(uint64(info.Size())))
	return nil
}

func sizesOf(images []image.Image) []arranger.Size {
	sizes := make([]arranger.Size, len(images))
	for i, img := range images {
		if img != nil {
			sizes[i] = arranger.SizeOf(img)
		}
	}
	return sizes
}
