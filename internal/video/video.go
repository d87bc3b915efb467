// Package video wraps the external ffmpeg/ffprobe processes: probing a
// source, streaming decoded rgb24 frames out of it, and encoding raster
// frames into a container.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

var (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
)

type Info struct {
	Width    int
	Height   int
	FPS      float64
	Frames   int     // 0 when the container does not say
	Duration float64 // seconds, 0 when unknown
	// Rotation is the display rotation in degrees. Width and Height are
	// already swapped for +-90.
	Rotation int
	// SAR is the source sample aspect ratio. Width is already scaled by it.
	SAR float64
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
		SAR          string `json:"sample_aspect_ratio"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			Rotation *float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe asks ffprobe for the first video stream of path.
func Probe(ctx context.Context, path string) (Info, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames,duration,sample_aspect_ratio:stream_tags=rotate:stream_side_data=rotation:format=duration",
		"-of", "json",
		path,
	}
	logger.Log.Debugf("Running ffprobe command: %s %s", FFprobe, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, FFprobe, args...)
	detach(cmd)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return Info{}, apperr.Source("probe %s: %s", path, strings.TrimSpace(string(ee.Stderr)))
		}
		return Info{}, apperr.Source("probe %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (Info, error) {
	var p probeOutput
	if err := json.Unmarshal(out, &p); err != nil {
		return Info{}, apperr.Source("parse ffprobe output: %w", err)
	}
	if len(p.Streams) == 0 {
		return Info{}, apperr.Source("no video stream")
	}
	s := p.Streams[0]
	info := Info{Width: s.Width, Height: s.Height}
	if info.Width <= 0 || info.Height <= 0 {
		return info, apperr.Source("video stream is %dx%d", info.Width, info.Height)
	}
	// ffmpeg decodes in display geometry: autorotate first, then the
	// scale filter from Stream squares the pixels
	info.SAR = parseRatio(s.SAR, ":")
	if info.SAR <= 0 {
		info.SAR = 1
	}
	info.Rotation = rotation(s.Tags.Rotate)
	for _, sd := range s.SideDataList {
		if sd.Rotation != nil {
			info.Rotation = int(math.Round(*sd.Rotation))
		}
	}
	if info.Rotation%180 != 0 {
		info.Width, info.Height = info.Height, info.Width
		info.SAR = 1 / info.SAR
	}
	if info.SAR != 1 {
		info.Width = max(1, int(math.Round(float64(info.Width)*info.SAR)))
	}
	info.FPS = parseRate(s.AvgFrameRate)
	if info.FPS == 0 {
		info.FPS = parseRate(s.RFrameRate)
	}
	info.Frames, _ = strconv.Atoi(s.NbFrames)
	info.Duration, _ = strconv.ParseFloat(s.Duration, 64)
	if info.Duration == 0 {
		info.Duration, _ = strconv.ParseFloat(p.Format.Duration, 64)
	}
	if info.Frames == 0 && info.Duration > 0 && info.FPS > 0 {
		// estimate, good enough for a progress bar
		info.Frames = int(info.Duration*info.FPS + 0.5)
	}
	return info, nil
}

// parseRate reads ffprobe rationals like "30000/1001".
func parseRate(s string) float64 {
	return parseRatio(s, "/")
}

func parseRatio(s, sep string) float64 {
	num, den, found := strings.Cut(s, sep)
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// rotation reads the legacy "rotate" tag. Only quarter turns count.
func rotation(tag string) int {
	r, err := strconv.Atoi(strings.TrimSpace(tag))
	if err != nil || r%90 != 0 {
		return 0
	}
	return r
}

// scaleFilter squares non-square pixels to the probed Width x Height.
func (i Info) scaleFilter() string {
	if i.SAR == 0 || i.SAR == 1 {
		return ""
	}
	return fmt.Sprintf("scale=%d:%d,setsar=1", i.Width, i.Height)
}

func (i Info) String() string {
	return fmt.Sprintf("%dx%d @ %.3f fps, %d frames, %.2fs", i.Width, i.Height, i.FPS, i.Frames, i.Duration)
}

// tail keeps the last bytes written to it, for ffmpeg error messages.
type tail struct {
	buf []byte
}

const tailSize = 4096

func (t *tail) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > tailSize {
		t.buf = t.buf[len(t.buf)-tailSize:]
	}
	return len(p), nil
}

func (t *tail) String() string {
	return strings.TrimSpace(string(t.buf))
}
