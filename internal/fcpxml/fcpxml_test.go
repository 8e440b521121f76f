package fcpxml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/mathbou/autocut/internal/timecode"
)

const wantDocument = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE fcpxml>
<fcpxml version="1.9">
	<resources>
		<format id="r0" name="FFVideoFormatRateUndefined" width="1920" height="1088" frameDuration="1/25s"></format>
		<format id="r1" name="FFVideoFormat1080p24" width="1920" height="1080" frameDuration="1/25s"></format>
		<asset id="v1" format="r0" name="take.mov" src="/media/take.mov" start="0/1s" duration="4s" hasAudio="1" audioSources="1" audioChannels="2"></asset>
		<asset id="a1" name="voice.wav" src="/media/voice.wav" start="0/1s" duration="4s" hasAudio="1" audioSources="1" audioChannels="2"></asset>
	</resources>
	<library>
		<event name="Timeline take.mov">
			<project name="Timeline take.mov">
				<sequence format="r1" tcFormat="NDF" tcStart="0/1s" duration="4s">
					<spine>
						<video ref="v1" offset="0s" start="0s" duration="2s">
							<audio ref="a1" lane="-2" offset="0s" start="0s" duration="2s"></audio>
						</video>
						<video ref="v1" lane="1" offset="2s" start="2s" duration="2s"></video>
					</spine>
				</sequence>
			</project>
		</event>
	</library>
</fcpxml>
`

func TestBuildDocument(t *testing.T) {
	doc := Build(Params{
		InputPath:   "/media/take.mov",
		Width:       1920,
		Height:      1088,
		Rate:        timecode.Rate{Num: 25, Den: 1},
		TotalFrames: 100,
		AudioPaths:  []string{"/media/voice.wav"},
		Clips: []Clip{
			{Start: 0, End: 50, AudibleLanes: []int{0}},
			{Start: 50, End: 100, Removed: true},
		},
	})

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if got := string(data); got != wantDocument {
		t.Errorf("Encode() mismatch\ngot:\n%s\nwant:\n%s", got, wantDocument)
	}
}

func TestBuildAudioLanes(t *testing.T) {
	doc := Build(Params{
		InputPath:   "/media/take.mov",
		Width:       1280,
		Height:      720,
		Rate:        timecode.Rate{Num: 25, Den: 1},
		TotalFrames: 100,
		AudioPaths:  []string{"/media/host.wav", "/media/guest.wav"},
		Clips: []Clip{
			{Start: 0, End: 40, AudibleLanes: []int{1}},
			{Start: 40, End: 100, Removed: true},
		},
	})

	assets := doc.Resources.Assets
	if len(assets) != 3 {
		t.Fatalf("len(Assets) = %d, want 3", len(assets))
	}
	for i, want := range []string{"v1", "a1", "a2"} {
		if assets[i].ID != want {
			t.Errorf("Assets[%d].ID = %q, want %q", i, assets[i].ID, want)
		}
	}
	if assets[1].Format != "" || assets[2].Format != "" {
		t.Errorf("audio assets carry format attributes: %q, %q", assets[1].Format, assets[2].Format)
	}

	videos := doc.Library.Event.Project.Sequence.Spine.Videos
	if len(videos) != 2 {
		t.Fatalf("len(Videos) = %d, want 2", len(videos))
	}
	kept := videos[0]
	if len(kept.Audios) != 1 {
		t.Fatalf("kept clip has %d audio children, want 1", len(kept.Audios))
	}
	if kept.Audios[0].Ref != "a2" {
		t.Errorf("audio ref = %q, want %q", kept.Audios[0].Ref, "a2")
	}
	if kept.Audios[0].Lane != "-3" {
		t.Errorf("audio lane = %q, want %q", kept.Audios[0].Lane, "-3")
	}
	removed := videos[1]
	if removed.Lane != "1" {
		t.Errorf("removed clip lane = %q, want %q", removed.Lane, "1")
	}
	if len(removed.Audios) != 0 {
		t.Errorf("removed clip has %d audio children, want 0", len(removed.Audios))
	}
}

func TestBuildRationalTimes(t *testing.T) {
	doc := Build(Params{
		InputPath:   "/media/ntsc.mov",
		Width:       1920,
		Height:      1080,
		Rate:        timecode.Rate{Num: 30000, Den: 1001},
		TotalFrames: 60,
		Clips: []Clip{
			{Start: 10, End: 60},
		},
	})

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got := string(data)
	for _, want := range []string{
		`frameDuration="1001/30000s"`,
		`duration="1001/500s"`,
		`offset="1001/3000s"`,
		`start="1001/3000s"`,
		`duration="1001/600s"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("document missing %s\ngot:\n%s", want, got)
		}
	}
}

func TestBuildAllRemoved(t *testing.T) {
	doc := Build(Params{
		InputPath:   "/media/quiet.mov",
		Width:       1920,
		Height:      1080,
		Rate:        timecode.Rate{Num: 25, Den: 1},
		TotalFrames: 75,
		Clips: []Clip{
			{Start: 0, End: 75, Removed: true},
		},
	})

	videos := doc.Library.Event.Project.Sequence.Spine.Videos
	if len(videos) != 1 {
		t.Fatalf("len(Videos) = %d, want 1", len(videos))
	}
	if videos[0].Lane != "1" {
		t.Errorf("lane = %q, want %q", videos[0].Lane, "1")
	}
	if videos[0].Duration != "3s" {
		t.Errorf("duration = %q, want %q", videos[0].Duration, "3s")
	}
}

func TestWrite(t *testing.T) {
	doc := Build(Params{
		InputPath:   "/media/take.mov",
		Width:       1920,
		Height:      1080,
		Rate:        timecode.Rate{Num: 25, Den: 1},
		TotalFrames: 25,
		Clips:       []Clip{{Start: 0, End: 25}},
	})

	path := filepath.Join(t.TempDir(), "take.fcpxml")
	if err := Write(path, doc); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!DOCTYPE fcpxml>\n") {
		t.Errorf("output missing XML declaration or DOCTYPE:\n%s", got[:min(len(got), 120)])
	}
	if !strings.HasSuffix(got, "</fcpxml>\n") {
		t.Errorf("output missing closing tag")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/media/take.mov", "/media/take.fcpxml"},
		{"clip.MOV", "clip.fcpxml"},
		{"recording", "recording.fcpxml"},
		{"/takes.raw/clip", "/takes.raw/clip.fcpxml"},
		{"/media/interview.final.mp4", "/media/interview.final.fcpxml"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
