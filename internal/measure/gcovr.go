package measure

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zjy-dev/gcovr-json-util/v2/pkg/gcovr"
)

// gcovrLine carries the noncode marker that older gcovr releases put on
// lines without executable code. gcovr.Line has no field for it.
type gcovrLine struct {
	gcovr.Line
	NonCode bool `json:"gcovr/noncode"`
}

// gcovrFile shadows gcovr.File's lines with the marked variant.
type gcovrFile struct {
	gcovr.File
	Lines []gcovrLine `json:"lines"`
}

type gcovrStream struct {
	FormatVersion string      `json:"gcovr/format_version"`
	Files         []gcovrFile `json:"files"`
}

// ReadGcovrJSON loads a gcovr JSON report into the model.
func (m *Model) ReadGcovrJSON(path string) error {
	report, err := gcovr.ParseReport(path)
	if err != nil {
		return err
	}
	if err := m.addGcovrReport(report); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseGcovrJSON reads a gcovr JSON report from r. Lines marked
// gcovr/noncode are not counted.
func (m *Model) ParseGcovrJSON(r io.Reader) error {
	var stream gcovrStream
	if err := json.NewDecoder(r).Decode(&stream); err != nil {
		return err
	}

	report := &gcovr.GcovrReport{FormatVersion: stream.FormatVersion}
	for _, f := range stream.Files {
		file := f.File
		file.Lines = make([]gcovr.Line, 0, len(f.Lines))
		for _, l := range f.Lines {
			if l.NonCode {
				continue
			}
			file.Lines = append(file.Lines, l.Line)
		}
		report.Files = append(report.Files, file)
	}
	return m.addGcovrReport(report)
}

func (m *Model) addGcovrReport(report *gcovr.GcovrReport) error {
	for _, f := range report.Files {
		if f.FilePath == "" {
			return fmt.Errorf("gcovr entry without file name")
		}
		for _, l := range f.Lines {
			if l.Count < 0 {
				return fmt.Errorf("%s:%d: negative hit count %d", f.FilePath, l.LineNumber, l.Count)
			}
		}
	}

	for _, f := range report.Files {
		m.AddRecord(f.FilePath)
		for _, l := range f.Lines {
			m.AddLine(f.FilePath, l.LineNumber, int64(l.Count))
		}
	}
	return nil
}
