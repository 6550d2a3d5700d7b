package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/gogpu/ggplay"
)

// Probe returns the pixel size of the first video stream in input. It asks
// ffprobe first and falls back to reading the MP4 container headers when
// ffprobe is missing or fails. ffprobe may be empty to auto-discover it.
func Probe(ctx context.Context, ffprobe, input string) (ggplay.Geometry, error) {
	g, perr := probeFFprobe(ctx, ffprobe, input)
	if perr == nil {
		return g, nil
	}

	g, merr := ProbeMP4(input)
	if merr == nil {
		ggplay.Logger().Warn("source: ffprobe failed, using container headers",
			"input", input, "err", perr, "size", g)
		return g, nil
	}
	return ggplay.Geometry{}, fmt.Errorf("%w: %s: %w", ErrProbeFailed, input, errors.Join(perr, merr))
}

func probeFFprobe(ctx context.Context, ffprobe, input string) (ggplay.Geometry, error) {
	path, err := FindFFprobe(ffprobe)
	if err != nil {
		return ggplay.Geometry{}, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		input,
	)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return ggplay.Geometry{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseProbeOutput(out)
}

// ParseProbeOutput parses ffprobe's csv output. The first non-empty line must
// start with "width,height"; trailing fields are ignored.
func ParseProbeOutput(out []byte) (ggplay.Geometry, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return ggplay.Geometry{}, fmt.Errorf("ffprobe: malformed line %q", line)
		}
		w, werr := strconv.Atoi(strings.TrimSpace(fields[0]))
		h, herr := strconv.Atoi(strings.TrimSpace(fields[1]))
		if werr != nil || herr != nil {
			return ggplay.Geometry{}, fmt.Errorf("ffprobe: malformed line %q", line)
		}
		g := ggplay.Geometry{Width: w, Height: h}
		if !g.Valid() {
			return ggplay.Geometry{}, fmt.Errorf("ffprobe: %w: %s", ggplay.ErrInvalidGeometry, g)
		}
		return g, nil
	}
	return ggplay.Geometry{}, errors.New("ffprobe: no video stream")
}

// ProbeMP4 reads the video size from the track header of the first video
// track of an MP4 file, or from its sample description when the header
// carries no size.
func ProbeMP4(input string) (ggplay.Geometry, error) {
	f, err := os.Open(input)
	if err != nil {
		return ggplay.Geometry{}, fmt.Errorf("mp4: open: %w", err)
	}
	defer f.Close()

	file, err := mp4.DecodeFile(f)
	if err != nil {
		return ggplay.Geometry{}, fmt.Errorf("mp4: decode: %w", err)
	}

	var moovs []*mp4.MoovBox
	if file.Init != nil && file.Init.Moov != nil {
		moovs = append(moovs, file.Init.Moov)
	}
	if file.Moov != nil {
		moovs = append(moovs, file.Moov)
	}
	for _, moov := range moovs {
		for _, trak := range moov.Traks {
			if g, ok := trackGeometry(trak); ok {
				return g, nil
			}
		}
	}
	return ggplay.Geometry{}, errors.New("mp4: no video track found")
}

func trackGeometry(trak *mp4.TrakBox) (ggplay.Geometry, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return ggplay.Geometry{}, false
	}

	// The sample entry carries the coded size that ffmpeg decodes to. The
	// track header holds the display size, which differs for non-square
	// pixels.
	if minf := trak.Mdia.Minf; minf != nil && minf.Stbl != nil && minf.Stbl.Stsd != nil {
		for _, child := range minf.Stbl.Stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
				g := ggplay.Geometry{Width: int(vse.Width), Height: int(vse.Height)}
				if g.Valid() {
					return g, true
				}
			}
		}
	}

	if trak.Tkhd != nil {
		// Track header sizes are 16.16 fixed point.
		g := ggplay.Geometry{Width: int(trak.Tkhd.Width >> 16), Height: int(trak.Tkhd.Height >> 16)}
		if g.Valid() {
			return g, true
		}
	}
	return ggplay.Geometry{}, false
}
