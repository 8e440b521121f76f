// Package fcpxml serializes edit timelines as FCPXML 1.9 documents
package fcpxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gitlab.com/mathbou/autocut/internal/timecode"
)

// Document is the root of an FCPXML 1.9 project file.
type Document struct {
	XMLName   xml.Name  `xml:"fcpxml"`
	Version   string    `xml:"version,attr"`
	Resources Resources `xml:"resources"`
	Library   Library   `xml:"library"`
}

// Resources declares the formats and media assets the timeline refers to.
type Resources struct {
	Formats []Format `xml:"format"`
	Assets  []Asset  `xml:"asset"`
}

// Format describes a video format resource.
type Format struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr"`
	Width         int    `xml:"width,attr"`
	Height        int    `xml:"height,attr"`
	FrameDuration string `xml:"frameDuration,attr"`
}

// Asset references one media file.
type Asset struct {
	ID            string `xml:"id,attr"`
	Format        string `xml:"format,attr,omitempty"`
	Name          string `xml:"name,attr"`
	Src           string `xml:"src,attr"`
	Start         string `xml:"start,attr"`
	Duration      string `xml:"duration,attr"`
	HasAudio      int    `xml:"hasAudio,attr"`
	AudioSources  int    `xml:"audioSources,attr"`
	AudioChannels int    `xml:"audioChannels,attr"`
}

// Library, Event and Project form the fixed container hierarchy around the
// single generated sequence.
type Library struct {
	Event Event `xml:"event"`
}

type Event struct {
	Name    string  `xml:"name,attr"`
	Project Project `xml:"project"`
}

type Project struct {
	Name     string   `xml:"name,attr"`
	Sequence Sequence `xml:"sequence"`
}

// Sequence is the edit timeline; its spine holds the generated clips.
type Sequence struct {
	Format   string `xml:"format,attr"`
	TCFormat string `xml:"tcFormat,attr"`
	TCStart  string `xml:"tcStart,attr"`
	Duration string `xml:"duration,attr"`
	Spine    Spine  `xml:"spine"`
}

type Spine struct {
	Videos []Video `xml:"video"`
}

// Video is one spine clip. Removed material carries lane "1"; kept clips
// sit on the spine itself and may nest connected audio clips.
type Video struct {
	Ref      string  `xml:"ref,attr"`
	Lane     string  `xml:"lane,attr,omitempty"`
	Offset   string  `xml:"offset,attr"`
	Start    string  `xml:"start,attr"`
	Duration string  `xml:"duration,attr"`
	Audios   []Audio `xml:"audio"`
}

// Audio connects an override audio asset under a kept clip.
type Audio struct {
	Ref      string `xml:"ref,attr"`
	Lane     string `xml:"lane,attr"`
	Offset   string `xml:"offset,attr"`
	Start    string `xml:"start,attr"`
	Duration string `xml:"duration,attr"`
}

// Clip is the builder's view of one spine entry: a source frame span, its
// role, and (for kept clips) which override audio lanes are audible over
// the span.
type Clip struct {
	Start        int
	End          int
	Removed      bool
	AudibleLanes []int
}

// Params collects everything Build needs to assemble a document.
type Params struct {
	InputPath   string
	Width       int
	Height      int
	Rate        timecode.Rate
	TotalFrames int
	AudioPaths  []string
	Clips       []Clip
}

// Build assembles the in-memory document: two format resources, one asset
// per media file, and one spine clip per timeline clip. Every clip's offset
// equals its start, so nothing is time-shifted; both express the clip's
// source-in as rational seconds.
func Build(p Params) *Document {
	base := filepath.Base(p.InputPath)
	duration := p.Rate.RationalSeconds(p.TotalFrames)
	frameDuration := p.Rate.FrameDuration()

	doc := &Document{
		Version: "1.9",
		Resources: Resources{
			Formats: []Format{
				{ID: "r0", Name: "FFVideoFormatRateUndefined", Width: p.Width, Height: p.Height, FrameDuration: frameDuration},
				{ID: "r1", Name: "FFVideoFormat1080p24", Width: 1920, Height: 1080, FrameDuration: frameDuration},
			},
			Assets: []Asset{
				{
					ID:            "v1",
					Format:        "r0",
					Name:          base,
					Src:           p.InputPath,
					Start:         "0/1s",
					Duration:      duration,
					HasAudio:      1,
					AudioSources:  1,
					AudioChannels: 2,
				},
			},
		},
		Library: Library{
			Event: Event{
				Name: "Timeline " + base,
				Project: Project{
					Name: "Timeline " + base,
					Sequence: Sequence{
						Format:   "r1",
						TCFormat: "NDF",
						TCStart:  "0/1s",
						Duration: duration,
					},
				},
			},
		},
	}

	for i, path := range p.AudioPaths {
		doc.Resources.Assets = append(doc.Resources.Assets, Asset{
			ID:            "a" + strconv.Itoa(i+1),
			Name:          filepath.Base(path),
			Src:           path,
			Start:         "0/1s",
			Duration:      duration,
			HasAudio:      1,
			AudioSources:  1,
			AudioChannels: 2,
		})
	}

	spine := &doc.Library.Event.Project.Sequence.Spine
	for _, clip := range p.Clips {
		start := p.Rate.RationalSeconds(clip.Start)
		clipDuration := p.Rate.RationalSeconds(clip.End - clip.Start)
		video := Video{
			Ref:      "v1",
			Offset:   start,
			Start:    start,
			Duration: clipDuration,
		}
		if clip.Removed {
			video.Lane = "1"
		} else {
			for _, lane := range clip.AudibleLanes {
				video.Audios = append(video.Audios, Audio{
					Ref:      "a" + strconv.Itoa(lane+1),
					Lane:     strconv.Itoa(-2 - lane),
					Offset:   start,
					Start:    start,
					Duration: clipDuration,
				})
			}
		}
		spine.Videos = append(spine.Videos, video)
	}

	return doc
}

// Encode marshals the document with the XML declaration and the fcpxml
// DOCTYPE, tab-indented.
func (d *Document) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal fcpxml: %w", err)
	}
	var out bytes.Buffer
	out.WriteString(xml.Header)
	out.WriteString("<!DOCTYPE fcpxml>\n")
	out.Write(body)
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Write encodes the document fully in memory and only then creates the
// output file, so a failed run never leaves a partial project behind.
func Write(path string, d *Document) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fcpxml: %w", err)
	}
	return nil
}

// OutputPath returns the project path for an input file: the input path
// with its extension replaced by .fcpxml.
func OutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".fcpxml"
}
