package cspro

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Capture types for form fields.
const (
	CaptureTextBox     = "TextBox"
	CaptureRadioButton = "RadioButton"
	CaptureCheckBox    = "CheckBox"
	CaptureDate        = "Date"
)

// Position is a left,top,right,bottom rectangle in form coordinates.
type Position struct {
	Left, Top, Right, Bottom int
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", p.Left, p.Top, p.Right, p.Bottom)
}

// GroupItem is anything that can appear inside a form group: a field, a
// static text, or a roster grid.
type GroupItem interface {
	isGroupItem()
}

// FormText is a static text element.
type FormText struct {
	Name     string
	Text     string
	Position *Position
}

func (FormText) isGroupItem() {}

// FormField binds a dictionary item to an entry field.
type FormField struct {
	Name              string
	DictionaryItem    string
	CaptureType       string
	Text              *FormText
	Position          *Position
	UseUnicodeTextBox bool
	FormNumber        int
}

func (FormField) isGroupItem() {}

// RosterColumn is one column of a roster grid.
type RosterColumn struct {
	Width      int
	HeaderText *FormText
	Fields     []FormField
}

// Roster is a grid capturing a repeating record.
type Roster struct {
	Name             string
	Label            string
	FormNumber       int
	Required         bool
	Max              int
	TypeName         string
	DisplaySize      Position
	Orientation      string
	FieldRowHeight   int
	HeadingRowHeight int
	UseOccurrenceLabels bool
	StubText         []FormText
	Columns          []RosterColumn
}

func (Roster) isGroupItem() {}

// FormGroup is the flow-control grouping of a form's items.
type FormGroup struct {
	Name       string
	Label      string
	FormNumber int
	Required   bool
	Max        int
	Items      []GroupItem
}

// Form is one visual form page.
type Form struct {
	Name       string
	Label      string
	FormNumber int
	Level      int
	Width      int
	Height     int
	ItemNames  []string
}

// FormLevel holds the groups of one application level.
type FormLevel struct {
	Name   string
	Label  string
	Groups []FormGroup
}

// FormFile is a complete CSPro form file.
type FormFile struct {
	Name               string
	DictionaryName     string
	DictionaryFileName string
	Forms              []Form
	Levels             []FormLevel
}

// Save writes the form file in CSPro's INI-like format: UTF-8 with a BOM and
// CRLF line endings.
func (ff *FormFile) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("\ufeff"); err != nil {
		return err
	}
	ff.writeHeader(w)
	ff.writeDictionaries(w)
	ff.writeForms(w)
	ff.writeLevels(w)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	return nil
}

func line(w *bufio.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\r\n", args...)
}

func blank(w *bufio.Writer) {
	w.WriteString("  \r\n")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (ff *FormFile) writeHeader(w *bufio.Writer) {
	line(w, "[FormFile]")
	line(w, "Version=CSPro 8.0")
	line(w, "Name=%s", ff.Name)
	line(w, "Label=%s", strings.TrimSuffix(ff.Name, "_FF"))
	line(w, "DefaultTextFont=-013 0000 0000 0000 0700 0000 0000 0000 0000 0000 0000 0000 0000 Arial")
	line(w, "FieldEntryFont=0018 0000 0000 0000 0600 0000 0000 0000 0000 0000 0000 0000 0000 Courier New")
	line(w, "Type=SystemControlled")
	blank(w)
}

func (ff *FormFile) writeDictionaries(w *bufio.Writer) {
	line(w, "[Dictionaries]")
	line(w, "File=.\\%s", ff.DictionaryFileName)
	blank(w)
}

func (ff *FormFile) writeForms(w *bufio.Writer) {
	for _, form := range ff.Forms {
		line(w, "[Form]")
		line(w, "Name=%s", form.Name)
		line(w, "Label=%s", form.Label)
		line(w, "Level=%d", form.Level)
		line(w, "Size=%d,%d", form.Width, form.Height)
		blank(w)
		for _, name := range form.ItemNames {
			line(w, "Item=%s", name)
		}
		blank(w)
		line(w, "[EndForm]")
		blank(w)
	}
}

func (ff *FormFile) writeLevels(w *bufio.Writer) {
	for _, level := range ff.Levels {
		line(w, "[Level]")
		line(w, "Name=%s", level.Name)
		line(w, "Label=%s", level.Label)
		for _, group := range level.Groups {
			blank(w)
			ff.writeGroup(w, group)
		}
	}
	blank(w)
}

func (ff *FormFile) writeGroup(w *bufio.Writer, group FormGroup) {
	line(w, "[Group]")
	line(w, "Required=%s", yesNo(group.Required))
	line(w, "Name=%s", group.Name)
	line(w, "Label=%s", group.Label)
	line(w, "Form=%d", group.FormNumber)
	line(w, "Max=%d", group.Max)
	for _, item := range group.Items {
		blank(w)
		switch it := item.(type) {
		case FormField:
			ff.writeField(w, it)
		case FormText:
			ff.writeText(w, it)
		case Roster:
			ff.writeRoster(w, it, group)
		}
	}
	line(w, "[EndGroup]")
}

func (ff *FormFile) writeField(w *bufio.Writer, field FormField) {
	line(w, "[Field]")
	line(w, "Name=%s", field.Name)
	if field.Position != nil {
		line(w, "Position=%s", field.Position)
	}
	line(w, "Item=%s,%s", field.DictionaryItem, ff.DictionaryName)
	line(w, "FieldLabelType=DictionaryLabel")
	if field.UseUnicodeTextBox {
		line(w, "UseUnicodeTextBox=Yes")
	}
	line(w, "DataCaptureType=%s", field.CaptureType)
	if field.FormNumber > 0 {
		line(w, "Form=%d", field.FormNumber)
	}
	if field.Text != nil {
		blank(w)
		ff.writeText(w, *field.Text)
	}
}

func (ff *FormFile) writeText(w *bufio.Writer, text FormText) {
	line(w, "[Text]")
	if text.Position != nil {
		line(w, "Position=%s", text.Position)
	}
	line(w, "Text=%s", text.Text)
	blank(w)
}

func (ff *FormFile) writeRoster(w *bufio.Writer, roster Roster, group FormGroup) {
	line(w, "[Grid]")
	line(w, "Name=%s", roster.Name)
	line(w, "Label=%s", roster.Label)
	line(w, "Form=%d", group.FormNumber)
	line(w, "Required=%s", yesNo(roster.Required))
	line(w, "Type=Record")
	line(w, "TypeName=%s", roster.TypeName)
	line(w, "Max=%d", roster.Max)
	line(w, "DisplaySize=%s", roster.DisplaySize)
	line(w, "Orientation=%s", roster.Orientation)
	line(w, "FieldRowHeight=%d", roster.FieldRowHeight)
	line(w, "HeadingRowHeight=%d", roster.HeadingRowHeight)
	if roster.UseOccurrenceLabels {
		line(w, "UseOccurrenceLabels=Yes")
	}
	line(w, "FreeMovement=%s", yesNo(false))
	w.WriteString(" \r\n")
	for _, stub := range roster.StubText {
		ff.writeText(w, stub)
		blank(w)
	}
	for _, column := range roster.Columns {
		ff.writeColumn(w, column)
	}
	line(w, "[EndGrid]")
	w.WriteString(" \r\n")
}

func (ff *FormFile) writeColumn(w *bufio.Writer, column RosterColumn) {
	line(w, "[Column]")
	if column.Width > 0 {
		line(w, "Width=%d", column.Width)
	}
	if column.HeaderText != nil {
		blank(w)
		line(w, "[HeaderText]")
		line(w, "Text=%s", column.HeaderText.Text)
	}
	for _, field := range column.Fields {
		blank(w)
		ff.writeField(w, field)
	}
	line(w, "[EndColumn]")
	blank(w)
}
