package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/Fepozopo/imgprobe/pkg/probe"
)

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintln(w, "Usage: imgprobe [flags] PATH...")
		fmt.Fprintln(w, "Report size, orientation, camera model and GPS position of JPEG and PNG images.")
		fmt.Fprintln(w, "A directory argument lists its .jpg, .jpeg and .png files.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fs.PrintDefaults()
	}
}

// Run executes imgprobe with args (without the program name) and returns the
// process exit status.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "imgprobe: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet("imgprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "print a JSON array of reports")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log segments and skipped EXIF entries to stderr")
	fs.Int64Var(&cfg.MaxBytes, "max-bytes", cfg.MaxBytes, "refuse files larger than this many bytes")
	update := fs.Bool("update", false, "check GitHub for a newer release and install it")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	log := newLogger(stderr, cfg.Debug)

	switch {
	case *version:
		fmt.Fprintf(stdout, "imgprobe %s\n", Version)
		return 0
	case *update:
		if err := CheckForUpdates(context.Background(), stdin, stdout, cfg.UpdateRepo); err != nil {
			log.Error().Err(err).Msg("update")
			return 1
		}
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	files, errs := expandPaths(fs.Args())
	reports := make([]probe.Report, 0, len(files))
	for _, path := range files {
		r, err := inspect(log, path, cfg.MaxBytes)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
		if r.Format != probe.FormatUnknown {
			reports = append(reports, r)
		}
	}

	if cfg.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			log.Error().Err(err).Msg("encode reports")
			return 1
		}
	} else {
		writeText(stdout, reports)
	}

	if errs != nil {
		fmt.Fprintf(stderr, "imgprobe: %v\n", errs)
		return 1
	}
	return 0
}

func inspect(log zerolog.Logger, path string, limit int64) (probe.Report, error) {
	data, err := probe.ReadFile(path, limit)
	if err != nil {
		return probe.Report{Path: path}, err
	}
	logSegments(log, path, data)
	r, err := probe.Inspect(data)
	r.Path = path
	logSkipped(log, path, r.Skipped)
	log.Debug().
		Str("path", path).
		Str("format", string(r.Format)).
		Int("bytes", len(data)).
		Bool("gps", r.GPS != nil).
		Msg("inspected")
	return r, err
}

// expandPaths replaces every directory argument with the JPEG and PNG files
// directly inside it, sorted by name. Plain file arguments are kept as given
// whatever their extension.
func expandPaths(args []string) ([]string, error) {
	var out []string
	var errs error
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		var names []string
		for _, e := range entries {
			if e.Type().IsRegular() && probe.FormatFromExt(e.Name()) != probe.FormatUnknown {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, filepath.Join(arg, n))
		}
	}
	return out, errs
}

// cameraNames maps model codes that are not self-explanatory to product names.
var cameraNames = map[string]string{
	"FC9313": "DJI Mini 5 Pro",
}

func cameraLabel(model string) string {
	if name, ok := cameraNames[model]; ok {
		return fmt.Sprintf("%s (%s)", name, model)
	}
	return model
}

func writeText(w io.Writer, reports []probe.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "(none found)")
		return
	}
	for _, r := range reports {
		framing := "unknown"
		if r.Dimensions != nil {
			framing = "landscape"
			if r.Dimensions.IsVertical() {
				framing = "vertical"
			}
		}
		fmt.Fprintf(w, "%s [%s]\n", filepath.Base(r.Path), framing)
		if r.Dimensions != nil {
			fmt.Fprintf(w, "    size:        %s\n", r.Dimensions)
		} else {
			fmt.Fprintln(w, "    size:        (unknown)")
		}
		if r.Orientation != probe.OrientationNone {
			fmt.Fprintf(w, "    orientation: %d (%s)\n", r.Orientation, r.Orientation)
		} else {
			fmt.Fprintln(w, "    orientation: (not present)")
		}
		if r.CameraModel != "" {
			fmt.Fprintf(w, "    camera:      %s\n", cameraLabel(r.CameraModel))
		} else {
			fmt.Fprintln(w, "    camera:      (unknown)")
		}
		if r.GPS != nil {
			fmt.Fprintf(w, "    gps:         %.6f, %.6f\n", r.GPS.Latitude, r.GPS.Longitude)
		} else {
			fmt.Fprintln(w, "    gps:         (not present)")
		}
	}
}

