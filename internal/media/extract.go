package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ExtractWAV decodes one audio stream of src into a mono 16-bit PCM WAV at
// the given sample rate, writing it to dst. ffmpeg's machine-readable
// progress stream on stdout is parsed line by line and reported as a
// completed fraction; stderr is captured and attached to any failure.
func ExtractWAV(ctx context.Context, binary, src string, streamIndex int, dst string, sampleRate int, totalSeconds float64, progress func(fraction float64)) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	args := []string{
		"-nostdin", "-v", "error", "-progress", "pipe:1", "-nostats", "-y",
		"-i", src,
		"-map", fmt.Sprintf("0:a:%d", streamIndex),
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
	cmd := commandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if progress == nil {
			continue
		}
		if fraction := progressFraction(scanner.Text(), totalSeconds); fraction >= 0 {
			progress(fraction)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ffmpeg progress: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("ffmpeg extract: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	if progress != nil {
		progress(1)
	}
	return nil
}

// progressFraction parses one line of ffmpeg -progress output. It returns
// the completed fraction of totalSeconds clamped to [0, 1], or -1 when the
// line carries no usable timing information.
func progressFraction(line string, totalSeconds float64) float64 {
	value, ok := strings.CutPrefix(strings.TrimSpace(line), "out_time_us=")
	if !ok {
		return -1
	}
	us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || us < 0 || totalSeconds <= 0 {
		return -1
	}
	fraction := float64(us) / 1e6 / totalSeconds
	if fraction > 1 {
		fraction = 1
	}
	return fraction
}
