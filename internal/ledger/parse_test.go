package ledger

import (
	"strings"
	"testing"
	"time"
)

func TestParseDispatchesOnVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantEntries  int
		wantWarnings int
		check        func(t *testing.T, user, category string, qty int)
	}{
		{
			name: "v2 tagged",
			input: "#floortrack-ledger v2\n" +
				"id,username,mainCategory,subCategory,startTime,elapsedTime,endTime,quantity,note\n" +
				"1,alice,Apex,Epoxy,2024-01-01T10:00:00Z,300,2024-01-01T10:05:00Z,5,\n",
			wantEntries: 1,
			check: func(t *testing.T, user, category string, qty int) {
				if user != "alice" || category != "Apex" || qty != 5 {
					t.Errorf("Unexpected entry %s %s %d", user, category, qty)
				}
			},
		},
		{
			name: "v1 with header",
			input: "id,username,mainCategory,subCategory,startTime,elapsedTime,endTime,quantity,note\n" +
				"\"2\",\"bob\",\"Sensor\",\"Epoxy\",\"2024-01-01T10:00:00\",\"0\",\"2024-01-01T10:01:00\",\"3\",\"\"\n",
			wantEntries: 1,
			check: func(t *testing.T, user, category string, qty int) {
				if user != "bob" || qty != 3 {
					t.Errorf("Unexpected entry %s %d", user, qty)
				}
			},
		},
		{
			name:        "v1 headerless",
			input:       "3,carol,Envelope,Box prep,2024-01-01 10:00:00,0,,,\n",
			wantEntries: 1,
		},
		{
			name: "v0 legacy",
			input: "Task,Start Time,Elapsed Time (seconds),End Time,Quantity\n" +
				"Apex,2024-01-01T10:00:00,60,2024-01-01T10:01:00,2,dave\n",
			wantEntries: 1,
			check: func(t *testing.T, user, category string, qty int) {
				if user != "dave" || category != "Apex" || qty != 2 {
					t.Errorf("Unexpected entry %s %s %d", user, category, qty)
				}
			},
		},
		{
			name: "bad rows become warnings",
			input: "#floortrack-ledger v2\n" +
				"id,username,mainCategory,subCategory,startTime,elapsedTime,endTime,quantity,note\n" +
				"notanid,alice,Apex,Epoxy,2024-01-01T10:00:00Z,0,2024-01-01T10:05:00Z,1,\n" +
				"short,row\n" +
				"4,alice,Apex,Epoxy,yesterday,0,2024-01-01T10:05:00Z,1,\n" +
				"5,alice,Apex,Epoxy,2024-01-01T10:00:00Z,0,2024-01-01T10:05:00Z,1,\n",
			wantEntries:  2,
			wantWarnings: 3,
		},
		{
			name: "damaged tag keeps rows",
			input: "#floortrack-ledger vX\n" +
				"id,username,mainCategory,subCategory,startTime,elapsedTime,endTime,quantity,note\n" +
				"6,alice,Apex,Epoxy,2024-01-01T10:00:00Z,300,2024-01-01T10:05:00Z,4,\n" +
				"7,bob,Apex,Epoxy,2024-01-01T11:00:00Z,60,2024-01-01T11:01:00Z,2,\n",
			wantEntries:  2,
			wantWarnings: 1,
			check: func(t *testing.T, user, category string, qty int) {
				if user != "alice" || category != "Apex" || qty != 4 {
					t.Errorf("Unexpected entry %s %s %d", user, category, qty)
				}
			},
		},
		{
			name:         "newer schema reads as current",
			input:        "#floortrack-ledger v9\nid,username\n",
			wantEntries:  0,
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, warnings, err := Parse(strings.NewReader(tt.input), "test.csv", time.UTC)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(entries) != tt.wantEntries {
				t.Fatalf("Expected %d entries, got %d (%+v)", tt.wantEntries, len(entries), entries)
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("Expected %d warnings, got %d: %v", tt.wantWarnings, len(warnings), warnings)
			}
			if tt.check != nil && len(entries) > 0 {
				e := entries[0]
				tt.check(t, e.Username, e.MainCategory, e.Quantity)
			}
		})
	}
}

func TestParseWarningLineNumbers(t *testing.T) {
	t.Parallel()

	input := "#floortrack-ledger v2\n" +
		"id,username,mainCategory,subCategory,startTime,elapsedTime,endTime,quantity,note\n" +
		"x,alice,Apex,Epoxy,,0,,1,\n"
	_, warnings, err := Parse(strings.NewReader(input), "Apex.csv", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %v", warnings)
	}
	if warnings[0].Line != 3 {
		t.Errorf("Expected warning on line 3, got %d", warnings[0].Line)
	}
	if !strings.HasPrefix(warnings[0].String(), "Apex.csv:3:") {
		t.Errorf("Unexpected warning text %q", warnings[0].String())
	}
}

func TestParseV0SynthesisesDistinctIDs(t *testing.T) {
	t.Parallel()

	input := "Task,Start Time,Elapsed Time (seconds),End Time,Quantity\n" +
		"Apex,2024-01-01T10:00:00,60,2024-01-01T10:01:00,2,dave\n" +
		"Apex,2024-01-01T11:00:00,60,2024-01-01T11:01:00,2,dave\n"
	entries, _, err := Parse(strings.NewReader(input), "tasks.csv", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID == entries[1].ID {
		t.Errorf("Expected two distinct synthetic ids, got %+v", entries)
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 1, 1, 14, 5, 0, 0, time.UTC)
	inputs := []string{
		"2024-01-01T14:05:00Z",
		"2024-01-01T14:05:00",
		"2024-01-01 14:05:00",
		`"2024-01-01T14:05:00"`,
		"1/1/2024, 2:05:00 PM",
		"2024. 1. 1. 오후 2:05:00",
	}
	for _, in := range inputs {
		got, err := ParseTime(in, time.UTC)
		if err != nil {
			t.Errorf("ParseTime(%q) failed: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseTime("not a time", time.UTC); err == nil {
		t.Error("Expected error for garbage timestamp")
	}
}
