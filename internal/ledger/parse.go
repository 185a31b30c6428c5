package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/floortrack/internal/models"
)

// Schema versions understood by Parse.
//
//	v0: "Task,Start Time,Elapsed Time (seconds),End Time,Quantity" plus a
//	    trailing username column, no ids
//	v1: id,username,mainCategory,subCategory,startTime,elapsedTime,endTime,
//	    quantity,note with or without a header row
//	v2: v1 columns behind a "#floortrack-ledger v2" tag line
const (
	versionUnknown = -1
	version0       = 0
	version1       = 1
	version2       = 2
)

// ParseWarning describes a row that could not be fully decoded
type ParseWarning struct {
	Source string
	Line   int
	Reason string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Reason)
}

// Parse decodes a ledger stream, dispatching on its schema version.
// Malformed rows become warnings; only read errors are returned as errors.
func Parse(r io.Reader, source string, loc *time.Location) ([]models.LogEntry, []ParseWarning, error) {
	if loc == nil {
		loc = time.Local
	}
	br := bufio.NewReader(r)

	var entries []models.LogEntry
	var warnings []ParseWarning
	warn := func(line int, format string, args ...any) {
		warnings = append(warnings, ParseWarning{Source: source, Line: line, Reason: fmt.Sprintf(format, args...)})
	}

	version := versionUnknown
	lineOffset := 0
	first, err := br.Peek(len(schemaTag))
	if err == nil && string(first) == schemaTag {
		tagLine, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, err
		}
		lineOffset = 1
		v, convErr := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(tagLine, schemaTag)))
		if convErr != nil {
			// a damaged tag still guards a current-format file
			warn(1, "unreadable schema tag, assuming v%d", version2)
			v = version2
		}
		version = v
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if version > CurrentVersion {
		warn(1, "schema v%d is newer than v%d, reading as v%d", version, CurrentVersion, CurrentVersion)
		version = CurrentVersion
	}

	firstRecord := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				warn(perr.Line+lineOffset, "malformed csv: %v", perr.Err)
				continue
			}
			return nil, nil, err
		}
		line, _ := cr.FieldPos(0)
		line += lineOffset
		if isBlank(rec) {
			continue
		}

		if firstRecord {
			firstRecord = false
			switch {
			case strings.EqualFold(strings.TrimSpace(rec[0]), "Task"):
				version = version0
				continue
			case strings.EqualFold(strings.TrimSpace(rec[0]), "id"):
				if version == versionUnknown {
					version = version1
				}
				continue
			case version == versionUnknown:
				version = version1
			}
		}

		var entry models.LogEntry
		var reasons []string
		if version == version0 {
			entry, reasons = decodeV0(rec, line, loc)
		} else {
			entry, reasons = decodeV1(rec, loc)
		}
		for _, reason := range reasons {
			warn(line, "%s", reason)
		}
		if entry.MainCategory == "" && entry.ID == 0 {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, warnings, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// decodeV1 reads the id-bearing nine column layout used by v1 and v2
func decodeV1(rec []string, loc *time.Location) (models.LogEntry, []string) {
	var reasons []string
	if len(rec) < 7 {
		return models.LogEntry{}, []string{fmt.Sprintf("expected 9 columns, got %d", len(rec))}
	}
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	id, err := parseID(col(0))
	if err != nil {
		return models.LogEntry{}, []string{fmt.Sprintf("invalid id %q", col(0))}
	}

	entry := models.LogEntry{
		ID:           id,
		Username:     col(1),
		MainCategory: col(2),
		SubCategory:  col(3),
		Note:         col(8),
	}
	entry.StartTime, reasons = parseOptionalTime(col(4), "startTime", loc, reasons)
	entry.EndTime, reasons = parseOptionalTime(col(6), "endTime", loc, reasons)
	if v := col(5); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			entry.ElapsedSeconds = f
		}
	}
	entry.Quantity = parseQuantity(col(7))
	return entry, reasons
}

// decodeV0 reads the oldest layout; rows carry no id, so one is synthesised
// from the line number to keep rows distinct
func decodeV0(rec []string, line int, loc *time.Location) (models.LogEntry, []string) {
	var reasons []string
	if len(rec) < 5 {
		return models.LogEntry{}, []string{fmt.Sprintf("expected 6 columns, got %d", len(rec))}
	}
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	entry := models.LogEntry{
		ID:           -int64(line),
		MainCategory: col(0),
		Username:     col(5),
	}
	entry.StartTime, reasons = parseOptionalTime(col(1), "startTime", loc, reasons)
	entry.EndTime, reasons = parseOptionalTime(col(3), "endTime", loc, reasons)
	if f, err := strconv.ParseFloat(col(2), 64); err == nil {
		entry.ElapsedSeconds = f
	}
	entry.Quantity = parseQuantity(col(4))
	return entry, reasons
}

func parseID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// parseQuantity mirrors integer parsing of user input: "5", "5.0" and " 5 "
// all read as 5; anything else reads as 0
func parseQuantity(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseOptionalTime(s, field string, loc *time.Location, reasons []string) (*time.Time, []string) {
	if s == "" {
		return nil, reasons
	}
	t, err := ParseTime(s, loc)
	if err != nil {
		return nil, append(reasons, fmt.Sprintf("invalid %s %q", field, s))
	}
	return &t, reasons
}

// FormatTime renders timestamps the way the ledger writes them
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006, 3:04:05 PM",   // en-US browser locale
	"2006. 1. 2. PM 3:04:05", // ko-KR browser locale, after meridiem rewrite
}

// ParseTime accepts RFC 3339 and the zone-less layouts older clients wrote;
// zone-less values are read in loc
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	s = strings.NewReplacer("오전", "AM", "오후", "PM").Replace(s)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
