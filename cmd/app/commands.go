package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prasetyowira/qrstudio/config"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/session"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/prasetyowira/qrstudio/infrastructure/qrcode"
	"github.com/spf13/cobra"
)

// styleFlags holds the common --size --padding --fg --bg --level --format
// flags
type styleFlags struct {
	size    int
	padding int
	fg      string
	bg      string
	level   string
	format  string
}

func addStyleFlags(cmd *cobra.Command, defaults style.Config) *styleFlags {
	f := &styleFlags{}
	cmd.Flags().IntVar(&f.size, "size", defaults.PixelSize, "QR code edge length in pixels (64-1024)")
	cmd.Flags().IntVar(&f.padding, "padding", defaults.Padding, "padding around the code in pixels (0-40)")
	cmd.Flags().StringVar(&f.fg, "fg", defaults.Foreground, "foreground color")
	cmd.Flags().StringVar(&f.bg, "bg", defaults.Background, "background color")
	cmd.Flags().StringVar(&f.level, "level", string(defaults.Level), "error correction level (L, M, Q, H)")
	cmd.Flags().StringVar(&f.format, "format", string(defaults.Format), "output format (png, jpeg, svg)")
	return f
}

// config validates the flags. Sizes are clamped; unknown enums are errors.
func (f *styleFlags) config() (style.Config, error) {
	level, ok := style.ParseLevel(f.level)
	if !ok {
		return style.Config{}, fmt.Errorf("invalid --level %q", f.level)
	}
	format, ok := style.ParseFormat(f.format)
	if !ok {
		return style.Config{}, fmt.Errorf("invalid --format %q", f.format)
	}
	return style.Config{
		PixelSize:  style.ClampPixelSize(f.size),
		Padding:    style.ClampPadding(f.padding),
		Foreground: f.fg,
		Background: f.bg,
		Level:      level,
		Format:     format,
	}.Normalize(), nil
}

func newGenerateCommand(cfg config.Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Export one padded QR code image",
		Args:  cobra.ExactArgs(1),
	}
	flags := addStyleFlags(cmd, cfg.Style)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default qrcode.<ext>)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		styleCfg, err := flags.config()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		snap := style.Snapshot{Config: styleCfg, Mode: style.ModeSingle, Single: args[0]}
		notifier := session.NewConsoleNotifier(cmd.ErrOrStderr())

		file, res, err := newService(cfg, cache.NewNamespaceLRU(cfg.CacheSize), nil).ExportSingle(ctx, snap, notifier)
		if err != nil {
			return err
		}
		if output == "" {
			output = file.Name
		}
		return writeOutput(ctx, cmd.OutOrStdout(), output, file, res)
	}
	return cmd
}

func newBulkCommand(cfg config.Config) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Export one QR code per input line into a zip archive",
		Args:  cobra.NoArgs,
	}
	flags := addStyleFlags(cmd, cfg.Style)
	cmd.Flags().StringVarP(&input, "input", "i", "-", "file with one value per line, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", constant.BulkFileName, "output archive, - for stdout")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		styleCfg, err := flags.config()
		if err != nil {
			return err
		}
		raw, err := readInput(cmd.InOrStdin(), input)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		snap := style.Snapshot{Config: styleCfg, Mode: style.ModeMulti, Inputs: style.SplitLines(raw)}
		notifier := session.NewConsoleNotifier(cmd.ErrOrStderr())

		file, res, err := newService(cfg, cache.NewNamespaceLRU(cfg.CacheSize), nil).ExportBulk(ctx, snap, notifier, nil)
		if err != nil {
			return err
		}
		for _, item := range res.SkippedItems {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped #%d %q: %s\n", item.Index, item.Value, item.Reason)
		}
		return writeOutput(ctx, cmd.OutOrStdout(), output, file, res)
	}
	return cmd
}

func newPreviewCommand(cfg config.Config) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "preview [text]",
		Short: "Print a QR code to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ok := style.ParseLevel(level)
			if !ok {
				return fmt.Errorf("invalid --level %q", level)
			}
			qrcode.WriteTerminal(cmd.OutOrStdout(), args[0], l)
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", string(cfg.Style.Level), "error correction level (L, M, Q, H)")
	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

func writeOutput(ctx context.Context, stdout io.Writer, path string, file *export.File, res export.Result) error {
	if file == nil {
		return errors.New("nothing to write")
	}
	var err error
	if path == "-" {
		_, err = stdout.Write(file.Data)
	} else {
		err = os.WriteFile(path, file.Data, 0o644)
	}
	if err != nil {
		appLogger.CtxError(ctx, "Failed to write output", appLogger.LoggerInfo{
			ContextFunction: constant.CtxCLI,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppOutput,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
			Data: map[string]interface{}{
				constant.DataOutput: path,
			},
		})
		return err
	}

	summary := map[string]interface{}{
		constant.DataJobID:     res.JobID,
		constant.DataOutput:    path,
		constant.DataSucceeded: res.Succeeded,
		constant.DataSkipped:   res.Skipped,
	}
	appLogger.CtxInfo(ctx, "Export written", appLogger.LoggerInfo{
		ContextFunction: constant.CtxCLI,
		Data:            summary,
	})
	if path != "-" {
		fmt.Fprintf(stdout, "%s (%s)\n", path, appLogger.FormatMetadata(summary))
	}
	return nil
}
