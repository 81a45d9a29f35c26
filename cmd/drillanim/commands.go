package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/drillanim/internal/director"
	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/editor"
	"github.com/ivlev/drillanim/internal/logging"
	"github.com/ivlev/drillanim/internal/persist"
	"github.com/ivlev/drillanim/internal/source"
	"github.com/ivlev/drillanim/internal/system"
	"github.com/ivlev/drillanim/internal/video"
)

func newNewCmd(a *app) *cobra.Command {
	var (
		output  string
		speed   string
		frames  int
		players int
	)
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a scenario file for a new drill",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			title := refArg(args)
			if title == "" {
				title = "Untitled drill"
			}
			if speed == "" {
				speed = a.cfg.Speed
			}
			s, err := drill.ParseSpeed(speed)
			if err != nil {
				return err
			}

			ed := p.NewDrill(title)
			ed.SetSpeed(s)
			// Players are spread along the halfway line.
			for i := 0; i < players; i++ {
				x := float64(drill.CanvasWidth) * float64(i+1) / float64(players+1)
				pt := editor.Point{X: x, Y: drill.CanvasHeight / 2}
				if _, err := ed.DropElement(drill.KindPlayer, drill.PlayerTeam1, pt); err != nil {
					return err
				}
			}
			for i := 1; i < frames; i++ {
				if _, err := ed.DuplicateFrame(); err != nil {
					return err
				}
			}

			if output == "" {
				output = director.GenerateScenarioPath(a.cfg.ScenariosDir)
			}
			if err := director.WriteScenario(director.FromDrill(ed.Drill()), output); err != nil {
				return err
			}
			logging.FromContext(ctx).Info("scenario created", "path", output, "frames", ed.Drill().Len())
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "scenario path (default: timestamped file in scenariosDir)")
	cmd.Flags().StringVar(&speed, "speed", "", "animation speed: slow, regular, fast")
	cmd.Flags().IntVar(&frames, "frames", 1, "number of frames")
	cmd.Flags().IntVar(&players, "players", 0, "players to place on the first frame")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a drill as an animation or a document",
	}
	cmd.AddCommand(newExportGIFCmd(a), newExportPDFCmd(a))
	return cmd
}

func newExportGIFCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "gif [scenario|id]",
		Short: "Render the looping animation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			ed, err := a.open(ctx, p, refArg(args))
			if err != nil {
				return err
			}
			art, err := p.ExportAnimation(ctx)
			if err != nil {
				return err
			}
			if output == "" {
				output = outputPath(a.cfg.OutputDir, ed.Drill().Meta.Title, "gif")
			}
			if err := writeArtifact(output, art.Data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: outputDir)")
	return cmd
}

func newExportPDFCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pdf [scenario|id]",
		Short: "Lay out every frame as a PDF page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			ed, err := a.open(ctx, p, refArg(args))
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := p.ExportDocument(ctx, &buf); err != nil {
				return err
			}
			if output == "" {
				output = outputPath(a.cfg.OutputDir, ed.Drill().Meta.Title, "pdf")
			}
			if err := writeArtifact(output, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: outputDir)")
	return cmd
}

func newThumbnailCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "thumbnail [scenario|id]",
		Short: "Render the first frame as a PNG thumbnail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			ed, err := a.open(ctx, p, refArg(args))
			if err != nil {
				return err
			}
			data, err := p.Thumbnail()
			if err != nil {
				return err
			}
			if output == "" {
				output = outputPath(a.cfg.OutputDir, ed.Drill().Meta.Title, "png")
			}
			if err := writeArtifact(output, data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: outputDir)")
	return cmd
}

func newPlayCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "play [scenario|id]",
		Short: "Step through the frames once at the playback interval",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			ed, err := a.open(ctx, p, refArg(args))
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = a.cfg.PlaybackInterval
			}

			out := cmd.OutOrStdout()
			stopped := make(chan struct{})
			d := director.New(ed, interval, director.WithLogger(logger))
			d.OnAdvance = func(frame int, playing bool) {
				f := ed.CurrentFrame()
				fmt.Fprintf(out, "%d\t%s\t%d elements\n", frame+1, f.Name, len(f.Elements))
				if !playing {
					close(stopped)
				}
			}
			d.Start()
			defer d.Stop()

			err = d.Do(func(ed *editor.Editor) error {
				if ed.Drill().Len() < 2 {
					return fmt.Errorf("nothing to play: drill has one frame")
				}
				f := ed.CurrentFrame()
				fmt.Fprintf(out, "%d\t%s\t%d elements\n", ed.Current()+1, f.Name, len(f.Elements))
				ed.Play()
				return nil
			})
			if err != nil {
				return err
			}
			select {
			case <-stopped:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "time per frame (default: playbackInterval)")
	return cmd
}

func newTranscodeCmd(a *app) *cobra.Command {
	var (
		output  string
		encoder string
		quality int
	)
	cmd := &cobra.Command{
		Use:   "transcode [gif]",
		Short: "Convert an exported GIF to MP4 with ffmpeg",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := refArg(args)
			if input == "" {
				latest, err := system.FindLatest(a.cfg.OutputDir, ".gif")
				if err != nil {
					return fmt.Errorf("no GIF to transcode: %w", err)
				}
				input = latest
			}
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".mp4"
			}
			if encoder == "" {
				encoder = a.cfg.VideoEncoder
			}
			if quality == 0 {
				quality = a.cfg.Quality
			}
			t := &video.FFmpegTranscoder{Encoder: encoder, Quality: quality}
			start := time.Now()
			if err := t.Transcode(ctx, input, output); err != nil {
				return err
			}
			logging.FromContext(ctx).Info("transcoded", "input", input, "output", output, "elapsed", time.Since(start).Round(time.Millisecond))
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: input with .mp4)")
	cmd.Flags().StringVar(&encoder, "encoder", "", "ffmpeg encoder, or auto")
	cmd.Flags().IntVar(&quality, "quality", 0, "x264: CRF, NVENC: CQ, VideoToolbox: Q*100 kbit/s")
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "upload [scenario|id]",
		Short: "Save a drill to the backend with its thumbnail and animation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			defer p.Close()
			if _, err := a.open(ctx, p, refArg(args)); err != nil {
				return err
			}
			view, err := p.Save(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.ID)
			if !watch || view.AnimationVideoStatus.Resolved() {
				return nil
			}
			st, err := p.WatchTranscode(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd, st)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "wait for the server-side video conversion")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Wait for the server-side video conversion of a drill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok := parseDrillID(args[0])
			if !ok {
				return fmt.Errorf("invalid drill id %q", args[0])
			}
			c := a.client()
			st, err := a.poller(ctx, c).Poll(ctx, id)
			if err != nil {
				return err
			}
			printStatus(cmd, st)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, st persist.StatusView) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", st.AnimationVideoStatus, st.AnimationVideoURL)
}

func newInspectCmd(a *app) *cobra.Command {
	var dpi int
	cmd := &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "List the pages of an exported document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.NewFitzPDFSource(args[0])
			if err != nil {
				return err
			}
			defer src.Close()
			out := cmd.OutOrStdout()
			for i := 0; i < src.PageCount(); i++ {
				w, h, err := src.GetPageDimensions(i)
				if err != nil {
					return err
				}
				img, err := src.RenderPage(i, dpi)
				if err != nil {
					return err
				}
				text, _ := src.Text(i)
				first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
				fmt.Fprintf(out, "%d\t%.0fx%.0fpt\t%dx%dpx\t%s\n", i+1, w, h, img.Bounds().Dx(), img.Bounds().Dy(), first)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&dpi, "dpi", 72, "render resolution")
	return cmd
}

