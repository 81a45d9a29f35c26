package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/drillanim/internal/api"
	"github.com/ivlev/drillanim/internal/config"
	"github.com/ivlev/drillanim/internal/director"
	"github.com/ivlev/drillanim/internal/document"
	"github.com/ivlev/drillanim/internal/editor"
	"github.com/ivlev/drillanim/internal/effects"
	"github.com/ivlev/drillanim/internal/engine"
	"github.com/ivlev/drillanim/internal/logging"
	"github.com/ivlev/drillanim/internal/source"
	"github.com/ivlev/drillanim/internal/video"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfgPath string
	verbose bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "drillanim",
		Short:        "Author, animate and publish coaching drills",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := logging.ParseLevel(cfg.LogLevel)
			if a.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.New(os.Stderr, level)))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default ./drillanim.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newNewCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newThumbnailCmd(a))
	root.AddCommand(newPlayCmd(a))
	root.AddCommand(newTranscodeCmd(a))
	root.AddCommand(newUploadCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newInspectCmd(a))
	return root
}

func (a *app) client() *api.Client {
	return api.New(a.cfg.API.BaseURL, a.cfg.API.Token, api.WithTimeout(a.cfg.API.Timeout))
}

func (a *app) poller(ctx context.Context, c *api.Client) *api.Poller {
	return api.NewPoller(c, a.cfg.Poll.Interval, a.cfg.Poll.MaxAttempts, logging.FromContext(ctx))
}

// project wires the exporter, backend and document settings from config.
func (a *app) project(ctx context.Context) (*engine.Project, error) {
	logger := logging.FromContext(ctx)
	easing, err := effects.NewEasing(a.cfg.Easing)
	if err != nil {
		return nil, err
	}
	opts := engine.ExportOptions{
		Width:   a.cfg.Width,
		Steps:   a.cfg.Steps,
		Easing:  easing,
		Workers: a.cfg.Workers,
	}
	if a.cfg.Background != "" {
		img, err := source.LoadImage(a.cfg.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		opts.Background = img
	}
	exp := engine.NewExporter(&video.GIFEncoder{Dither: a.cfg.Dither}, opts, logger)

	c := a.client()
	return engine.NewProject(exp, engine.ProjectOptions{
		Backend:        c,
		Poller:         a.poller(ctx, c),
		ThumbnailWidth: a.cfg.ThumbnailWidth,
		Document: document.Options{
			PageSize:    a.cfg.Document.PageSize,
			Orientation: a.cfg.Document.Orientation,
			DPI:         a.cfg.Document.DPI,
		},
		ShareURL: func(id int64) string {
			return a.cfg.ShareURLFor(strconv.FormatInt(id, 10))
		},
		Background: opts.Background,
	}, logger), nil
}

// open loads a drill reference: a backend id, a scenario path, or, when
// empty, the newest scenario in the scenarios directory.
func (a *app) open(ctx context.Context, p *engine.Project, ref string) (*editor.Editor, error) {
	if ref == "" {
		latest, err := director.FindLatestScenario(a.cfg.ScenariosDir)
		if err != nil {
			return nil, fmt.Errorf("%w; create one with 'drillanim new'", err)
		}
		logging.FromContext(ctx).Info("using latest scenario", "path", latest)
		ref = latest
	}
	if id, ok := parseDrillID(ref); ok {
		return p.Load(ctx, id)
	}
	return p.LoadFile(ref)
}

func parseDrillID(ref string) (int64, bool) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// outputPath names an artifact after the drill, as "<title>_<timestamp>.<ext>".
func outputPath(dir, title, ext string) string {
	name := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "drill"
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", name, timestamp, ext))
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func refArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

