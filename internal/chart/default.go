package chart

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultParser reads the .chart text format.
type DefaultParser struct{}

func (p *DefaultParser) Parse(file string) (*Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read chart file: %w", err)
	}
	return p.ParseText(string(data))
}

type preTrack struct {
	notes       []Note
	spPhrases   []StarPower
	events      []ChartEvent
	forcedFlags map[int]bool
	tapFlags    map[int]bool
}

func (t *preTrack) isEmpty() bool {
	return 0 == len(t.notes) && 0 == len(t.spPhrases) && 0 == len(t.events)
}

var singleTracks = map[string]Difficulty{
	"[EasySingle]":   Easy,
	"[MediumSingle]": Medium,
	"[HardSingle]":   Hard,
	"[ExpertSingle]": Expert,
}

func (p *DefaultParser) ParseText(text string) (*Chart, error) {
	text = strings.TrimPrefix(text, "\xEF\xBB\xBF")
	lines := []string{}
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}

	const defaultResolution = 192.0
	offset, resolution := 0.0, defaultResolution
	timeSigs := []TimeSignature{}
	bpms := []BPM{}
	sections := []Section{}
	preTracks := map[Difficulty]*preTrack{}

	i := 0
	for i < len(lines) {
		header := lines[i]
		i++
		body, rest, err := sectionBody(lines, i)
		if nil != err {
			return nil, fmt.Errorf("%v: %w", header, err)
		}
		i = rest

		switch {
		case header == "[Song]":
			for _, l := range body {
				if v, ok := headerValue(l, "Offset = "); ok {
					offset = v
				} else if v, ok := headerValue(l, "Resolution = "); ok {
					resolution = v
				}
			}
		case header == "[SyncTrack]":
			for _, l := range body {
				if err := readSyncEvent(l, &timeSigs, &bpms); nil != err {
					return nil, err
				}
			}
		case header == "[Events]":
			for _, l := range body {
				if err := readSectionEvent(l, &sections); nil != err {
					return nil, err
				}
			}
		default:
			diff, ok := singleTracks[header]
			if !ok {
				continue // skip unknown section wholesale
			}
			track, ok := preTracks[diff]
			if !ok {
				track = &preTrack{forcedFlags: map[int]bool{}, tapFlags: map[int]bool{}}
				preTracks[diff] = track
			}
			if !track.isEmpty() {
				continue
			}
			for _, l := range body {
				if err := readTrackEvent(l, track); nil != err {
					return nil, err
				}
			}
		}
	}

	chart := Chart{
		SyncTrack:  NewSyncTrack(timeSigs, bpms),
		Sections:   sections,
		NoteTracks: map[Difficulty]NoteTrack{},
	}
	header, err := NewSongHeader(offset, resolution)
	if nil != err {
		return nil, err
	}
	chart.Header = header

	for diff, track := range preTracks {
		for i := range track.notes {
			if track.forcedFlags[track.notes[i].Position] {
				track.notes[i].IsForced = true
			}
			if track.tapFlags[track.notes[i].Position] {
				track.notes[i].IsTap = true
			}
		}
		chart.NoteTracks[diff] = NewNoteTrack(track.notes, track.spPhrases, track.events)
	}

	return &chart, nil
}

// sectionBody collects the lines between the opening { and closing } of
// a section, returning the index past the closing brace.
func sectionBody(lines []string, i int) ([]string, int, error) {
	if i >= len(lines) || lines[i] != "{" {
		return nil, i, fmt.Errorf("section does not open with {")
	}
	i++
	body := []string{}
	for i < len(lines) {
		if lines[i] == "}" {
			return body, i + 1, nil
		}
		body = append(body, lines[i])
		i++
	}
	return nil, i, fmt.Errorf("section does not close with }")
}

func headerValue(line, prefix string) (float64, bool) {
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(line, prefix), 64)
	if nil != err {
		// Malformed values are skipped, the same way the game skips them
		return 0, false
	}
	return v, true
}

func readSyncEvent(line string, timeSigs *[]TimeSignature, bpms *[]BPM) error {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return fmt.Errorf("sync event missing data: %q", line)
	}
	position, err := strconv.Atoi(fields[0])
	if nil != err {
		return nil
	}
	switch fields[2] {
	case "TS":
		numerator, err := strconv.Atoi(fields[3])
		if nil != err {
			return nil
		}
		denomPower := 2
		if len(fields) > 4 {
			denomPower, err = strconv.Atoi(fields[4])
			if nil != err {
				return nil
			}
		}
		*timeSigs = append(*timeSigs, TimeSignature{position, numerator, 1 << denomPower})
	case "B":
		micro, err := strconv.Atoi(fields[3])
		if nil != err {
			return nil
		}
		*bpms = append(*bpms, BPM{position, micro})
	}
	return nil
}

func readSectionEvent(line string, sections *[]Section) error {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return fmt.Errorf("event missing data: %q", line)
	}
	position, err := strconv.Atoi(fields[0])
	if nil != err {
		return nil
	}
	if fields[2] != "E" {
		return nil
	}
	if fields[3] == "\"section" || len(fields) > 4 {
		parts := []string{}
		for _, f := range fields[4:] {
			parts = append(parts, strings.Trim(f, "\""))
		}
		*sections = append(*sections, Section{position, strings.Join(parts, " ")})
	}
	return nil
}

func readTrackEvent(line string, track *preTrack) error {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return fmt.Errorf("track event missing data: %q", line)
	}
	position, err := strconv.Atoi(fields[0])
	if nil != err {
		return nil
	}
	switch fields[2] {
	case "N":
		if len(fields) < 5 {
			return fmt.Errorf("note event missing data: %q", line)
		}
		code, err := strconv.Atoi(fields[3])
		if nil != err {
			return nil
		}
		length, err := strconv.Atoi(fields[4])
		if nil != err {
			return nil
		}
		const (
			forcedCode = 5
			tapCode    = 6
			openCode   = 7
		)
		switch {
		case code >= int(Green) && code <= int(Orange):
			track.notes = append(track.notes, Note{Position: position, Length: length, Colour: NoteColour(code)})
		case code == forcedCode:
			track.forcedFlags[position] = true
		case code == tapCode:
			track.tapFlags[position] = true
		case code == openCode:
			track.notes = append(track.notes, Note{Position: position, Length: length, Colour: Open})
		default:
			return fmt.Errorf("invalid note type %v", code)
		}
	case "S":
		if len(fields) < 5 {
			return fmt.Errorf("SP event missing data: %q", line)
		}
		if fields[3] != "2" {
			return nil
		}
		length, err := strconv.Atoi(fields[4])
		if nil != err {
			return nil
		}
		track.spPhrases = append(track.spPhrases, StarPower{position, length})
	case "E":
		track.events = append(track.events, ChartEvent{position, fields[3]})
	}
	return nil
}
