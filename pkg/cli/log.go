package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/Fepozopo/imgprobe/pkg/probe"
)

// newLogger writes human readable log lines to w. Debug output is enabled by
// -debug or IMGPROBE_DEBUG.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(out).Level(level).With().Str("app", "imgprobe").Logger()
}

// logSegments traces the marker segments of a JPEG at debug level.
func logSegments(log zerolog.Logger, path string, data []byte) {
	if log.GetLevel() > zerolog.DebugLevel || probe.DetectFormat(data) != probe.FormatJPEG {
		return
	}
	segs, err := probe.Segments(data)
	if err != nil {
		return
	}
	for _, s := range segs {
		log.Debug().
			Str("path", path).
			Str("marker", markerName(s.Marker)).
			Int("offset", int(s.Offset)).
			Int("length", len(s.Payload)).
			Msg("segment")
	}
}

// logSkipped reports IFD0 entries the decoder dropped.
func logSkipped(log zerolog.Logger, path string, skipped error) {
	if skipped == nil {
		return
	}
	var merr *multierror.Error
	if !errors.As(skipped, &merr) {
		log.Debug().Str("path", path).Err(skipped).Msg("skipped ifd entry")
		return
	}
	for _, err := range merr.Errors {
		log.Debug().Str("path", path).Err(err).Msg("skipped ifd entry")
	}
}

func markerName(m byte) string {
	switch {
	case m == 0xC4:
		return "DHT"
	case m == 0xDB:
		return "DQT"
	case m == 0xDD:
		return "DRI"
	case m == 0xFE:
		return "COM"
	case m >= 0xE0 && m <= 0xEF:
		return fmt.Sprintf("APP%d", m-0xE0)
	case m >= 0xC0 && m <= 0xCF:
		return fmt.Sprintf("SOF%d", m-0xC0)
	default:
		return fmt.Sprintf("0x%02X", m)
	}
}
