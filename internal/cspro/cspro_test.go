package cspro

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestToSymbol(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"household number", "HOUSEHOLD_NUMBER"},
		{"edu_level", "EDU_LEVEL"},
		{"age (years)", "AGE_YEARS"},
		{"1st visit", "ST_VISIT"},
		{"  --  ", "NAME"},
		{"école", "ECOLE"},
		{"ÉCOLE", "ECOLE"},
		{"a--b", "A_B"},
	}
	for _, tt := range tests {
		if got := ToSymbol(tt.in); got != tt.want {
			t.Errorf("ToSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToLabel(t *testing.T) {
	if got := ToLabel("A1", "household_number"); got != "A1 Household Number" {
		t.Fatalf("got %q", got)
	}
	if got := ToLabel("", "edu_level"); got != "Edu Level" {
		t.Fatalf("got %q", got)
	}
}

func TestReplaceSuffix(t *testing.T) {
	if got := ReplaceSuffix("SECTION_A_REC", "_REC", "_FORM"); got != "SECTION_A_FORM" {
		t.Fatalf("got %q", got)
	}
	if got := ReplaceSuffix("OTHER", "_REC", "_FORM"); got != "OTHER" {
		t.Fatalf("got %q", got)
	}
}

func TestDictionarySave(t *testing.T) {
	dict := NewDictionary("TEST_DICT", []Label{{Text: "Test Dictionary"}}, []Level{
		{
			Name:   "TEST_LEVEL",
			Labels: []Label{{Text: "Test Level"}},
			IDs: IDs{Items: []Item{
				{Name: "CLUSTER", Labels: []Label{{Text: "A1 Cluster"}}, ContentType: ContentNumeric, Length: 2, ZeroFill: true},
			}},
			Records: []Record{
				{
					Name:        "SECTION_B_REC",
					Labels:      []Label{{Text: "B Education"}},
					RecordType:  "B",
					Occurrences: RecordOccurrences{Required: false, Maximum: 50},
					Items: []Item{
						{Name: "EDU_LEVEL", Labels: []Label{{Text: "B1 Edu Level"}}, ContentType: ContentNumeric, Length: 1},
					},
				},
			},
		},
	})

	path := filepath.Join(t.TempDir(), "test.dcf")
	if err := dict.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("dcf is not valid JSON: %v", err)
	}
	if parsed["software"] != "CSPro" || parsed["fileType"] != "dictionary" {
		t.Fatalf("header wrong: %v", parsed)
	}
}

func TestFormFileSaveFormat(t *testing.T) {
	ff := &FormFile{
		Name:               "TEST_FF",
		DictionaryName:     "TEST_DICT",
		DictionaryFileName: "test.dcf",
		Forms: []Form{
			{Name: "ID_ITEMS_FORM", Label: "Id Items", FormNumber: 1, Level: 1, Width: 300, Height: 300, ItemNames: []string{"CLUSTER"}},
		},
		Levels: []FormLevel{
			{
				Name:  "TEST_LEVEL",
				Label: "Test Level",
				Groups: []FormGroup{
					{
						Name: "ID_ITEMS_FORM", Label: "Id Items", FormNumber: 1, Required: true, Max: 1,
						Items: []GroupItem{
							FormField{
								Name:           "CLUSTER",
								DictionaryItem: "CLUSTER",
								CaptureType:    CaptureTextBox,
								Position:       &Position{50, 27, 250, 47},
								Text:           &FormText{Name: "CLUSTER_LABEL", Text: "A1 Cluster", Position: &Position{50, 27, 200, 47}},
							},
						},
					},
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "test.fmf")
	if err := ff.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "\ufeff") {
		t.Fatal("missing UTF-8 BOM")
	}
	if !strings.Contains(content, "[FormFile]\r\n") {
		t.Fatal("missing FormFile section or CRLF endings")
	}
	if !strings.Contains(content, "File=.\\test.dcf\r\n") {
		t.Fatal("missing dictionary reference")
	}
	if !strings.Contains(content, "Item=CLUSTER,TEST_DICT\r\n") {
		t.Fatal("field not bound to dictionary item")
	}
	if !strings.Contains(content, "Label=TEST\r\n") {
		t.Fatal("form file label should strip the _FF suffix")
	}
}

func TestQsfSave(t *testing.T) {
	qsf := NewQsfFile(
		[]QsfLanguage{{Name: "EN", Label: "English"}},
		[]QsfStyle{{Name: "Normal", ClassName: "normal", CSS: "font-family: Arial;font-size: 16px;"}},
		[]QsfQuestion{
			{
				Name: "TEST_DICT.CLUSTER",
				Conditions: []QsfCondition{
					{QuestionText: QsfText{EN: "<p>Cluster number</p>"}, HelpText: QsfText{EN: ""}},
				},
			},
		},
	)

	path := filepath.Join(t.TempDir(), "test.ent.qsf")
	if err := qsf.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		t.Fatal("missing document start marker")
	}
	if !strings.HasSuffix(content, "...") {
		t.Fatal("missing document end marker")
	}

	var back QsfFile
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("qsf is not valid YAML: %v", err)
	}
	if back.FileType != "Question Text" || back.Version != "CSPro 8.0" {
		t.Fatalf("header wrong: %+v", back)
	}
	if len(back.Questions) != 1 || back.Questions[0].Name != "TEST_DICT.CLUSTER" {
		t.Fatalf("questions wrong: %+v", back.Questions)
	}
}
