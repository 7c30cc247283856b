package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/survaize/survaize/internal/cspro"
	"github.com/survaize/survaize/internal/model"
)

// Form layout constants; CSPro resizes forms on load so they only need to be
// roughly right.
const (
	rowOffset         = 30
	labelCharSize     = 9
	labelWidthPadding = 20
	fieldCharSize     = 15
	fieldHeight       = 20
)

// CSProWriter generates a complete CSPro data entry application: dictionary
// (.dcf), forms (.fmf), question text (.ent.qsf), application (.ent), plus
// logic and message stubs.
type CSProWriter struct {
	logger *slog.Logger
}

// NewCSProWriter creates a CSPro writer.
func NewCSProWriter(logger *slog.Logger) *CSProWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSProWriter{logger: logger}
}

// Write generates the CSPro application in a directory named after the
// questionnaire, next to outputPath.
func (w *CSProWriter) Write(ctx context.Context, q *model.Questionnaire, outputPath string) error {
	appName := makeFileName(q.Title)
	appDir := filepath.Join(filepath.Dir(outputPath), appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return fmt.Errorf("create application directory: %w", err)
	}
	w.logger.Info("generating cspro application", "dir", appDir)

	dict, itemQuestions := w.buildDictionary(q)
	dictFileName := appName + ".dcf"
	if err := dict.Save(filepath.Join(appDir, dictFileName)); err != nil {
		return err
	}

	formFile := w.buildFormFile(dict, dictFileName, itemQuestions)
	if err := formFile.Save(filepath.Join(appDir, appName+".fmf")); err != nil {
		return err
	}

	if err := w.writeLogicFile(q, filepath.Join(appDir, appName+".ent.apc")); err != nil {
		return err
	}
	qsf := w.buildQuestionTextFile(q, dict.Name)
	if err := qsf.Save(filepath.Join(appDir, appName+".ent.qsf")); err != nil {
		return err
	}
	if err := w.writeApplicationFile(q, appDir, appName); err != nil {
		return err
	}
	if err := w.writeMessageFile(filepath.Join(appDir, appName+".ent.mgf")); err != nil {
		return err
	}

	w.logger.Info("cspro application generated", "name", appName)
	return nil
}

// makeFileName strips a title down to alphanumerics for use as a file name.
func makeFileName(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Questionnaire"
	}
	return b.String()
}

// buildDictionary maps the questionnaire to a CSPro dictionary. Questions
// named in id_fields become level ids; each remaining section becomes a
// record. The returned map links dictionary item names back to their source
// questions for capture-type decisions.
func (w *CSProWriter) buildDictionary(q *model.Questionnaire) (*cspro.Dictionary, map[string]model.Question) {
	dictName := cspro.ToSymbol(q.Title + "_DICT")
	levelName := cspro.ToSymbol(q.Title + "_LEVEL")

	itemQuestions := make(map[string]model.Question)
	idFields := make(map[string]struct{}, len(q.IDFields))
	for _, id := range q.IDFields {
		idFields[id] = struct{}{}
	}

	var idItems []cspro.Item
	for _, section := range q.Sections {
		for _, question := range section.Questions {
			if _, ok := idFields[question.Base().ID]; ok {
				item := questionToItem(question)
				itemQuestions[item.Name] = question
				idItems = append(idItems, item)
			}
		}
	}

	var records []cspro.Record
	for _, section := range q.Sections {
		var items []cspro.Item
		for _, question := range section.Questions {
			if _, ok := idFields[question.Base().ID]; ok {
				continue
			}
			item := questionToItem(question)
			itemQuestions[item.Name] = question
			items = append(items, item)
		}
		if len(items) == 0 {
			// All questions in this section are id fields.
			w.logger.Info("skipping record for section", "section", section.ID)
			continue
		}
		records = append(records, cspro.Record{
			Name:        cspro.ToSymbol(section.ID + "_REC"),
			Labels:      []cspro.Label{{Text: cspro.ToLabel(section.Number, section.ID)}},
			RecordType:  section.Number[:1],
			Occurrences: cspro.RecordOccurrences{Required: false, Maximum: section.Occurrences},
			Items:       items,
		})
	}

	level := cspro.Level{
		Name:    levelName,
		Labels:  []cspro.Label{{Text: q.Title + " Level"}},
		IDs:     cspro.IDs{Items: idItems},
		Records: records,
	}
	dict := cspro.NewDictionary(dictName, []cspro.Label{{Text: q.Title + " Dictionary"}}, []cspro.Level{level})
	return dict, itemQuestions
}

// questionToItem maps one question to a dictionary item, choosing content
// type and field length from the variant's constraints.
func questionToItem(question model.Question) cspro.Item {
	base := question.Base()
	label := cspro.ToLabel(base.Number, base.ID)

	contentType := cspro.ContentAlpha
	length := 25
	var valueSets []cspro.ValueSet

	switch q := question.(type) {
	case *model.NumericQuestion:
		contentType = cspro.ContentNumeric
		length = 15
		if q.MaxValue != nil {
			length = len(strconv.Itoa(int(*q.MaxValue)))
			if length < 1 {
				length = 1
			}
		}
	case *model.TextQuestion:
		length = 100
		if q.MaxLength != nil {
			length = *q.MaxLength
		}
	case *model.SingleSelectQuestion:
		contentType = cspro.ContentNumeric
		length = 1
		for _, opt := range q.Options {
			if len(opt.Code) > length {
				length = len(opt.Code)
			}
		}
		valueSets = []cspro.ValueSet{buildValueSet(base.ID, label, q.Options)}
	case *model.MultiSelectQuestion:
		// Multi-select stores every selected code side by side.
		length = 0
		for _, opt := range q.Options {
			length += len(opt.Code)
		}
		if length == 0 {
			length = 25
		}
		valueSets = []cspro.ValueSet{buildValueSet(base.ID, label, q.Options)}
	case *model.DateQuestion:
		contentType = cspro.ContentNumeric
		length = 8 // YYYYMMDD
	case *model.LocationQuestion:
		length = 25 // lat,lon pair
	}

	return cspro.Item{
		Name:        cspro.ToSymbol(base.ID),
		Labels:      []cspro.Label{{Text: label}},
		ContentType: contentType,
		Length:      length,
		ZeroFill:    contentType == cspro.ContentNumeric,
		ValueSets:   valueSets,
	}
}

func buildValueSet(id, label string, options []model.Option) cspro.ValueSet {
	values := make([]cspro.Value, 0, len(options))
	for _, opt := range options {
		values = append(values, cspro.Value{
			Labels: []cspro.Label{{Text: opt.Label}},
			Pairs:  []map[string]any{{"value": opt.Code}},
		})
	}
	return cspro.ValueSet{
		Name:   cspro.ToSymbol(id + "_VS1"),
		Labels: []cspro.Label{{Text: label}},
		Values: values,
	}
}

func captureType(item cspro.Item, itemQuestions map[string]model.Question) string {
	switch itemQuestions[item.Name].(type) {
	case *model.SingleSelectQuestion:
		return cspro.CaptureRadioButton
	case *model.MultiSelectQuestion:
		return cspro.CaptureCheckBox
	case *model.DateQuestion:
		return cspro.CaptureDate
	default:
		return cspro.CaptureTextBox
	}
}

// buildFormFile lays out one form for the id items and one per record.
// Records with multiple occurrences become rosters.
func (w *CSProWriter) buildFormFile(dict *cspro.Dictionary, dictFileName string, itemQuestions map[string]model.Question) *cspro.FormFile {
	level := dict.Levels[0]
	ff := &cspro.FormFile{
		Name:               cspro.ReplaceSuffix(dict.Name, "_DICT", "_FF"),
		DictionaryName:     dict.Name,
		DictionaryFileName: dictFileName,
	}

	formNumber := 1
	form, group := buildItemsForm(level.IDs.Items, itemQuestions, formNumber, "ID_ITEMS_FORM", "Id Items", true, 1)
	ff.Forms = append(ff.Forms, form)
	groups := []cspro.FormGroup{group}

	for _, record := range level.Records {
		formNumber++
		formName := cspro.ReplaceSuffix(record.Name, "_REC", "_FORM")
		label := record.Labels[0].Text
		if record.Occurrences.Maximum > 1 {
			form, group = buildRosterForm(record, itemQuestions, formNumber, formName, label)
		} else {
			form, group = buildItemsForm(record.Items, itemQuestions, formNumber, formName, label,
				record.Occurrences.Required, 1)
		}
		ff.Forms = append(ff.Forms, form)
		groups = append(groups, group)
	}

	ff.Levels = []cspro.FormLevel{{Name: level.Name, Label: level.Labels[0].Text, Groups: groups}}
	return ff
}

// buildItemsForm lays out a simple one-field-per-row form.
func buildItemsForm(items []cspro.Item, itemQuestions map[string]model.Question, formNumber int, formName, label string, required bool, maxOccurs int) (cspro.Form, cspro.FormGroup) {
	form := cspro.Form{
		Name:       formName,
		Label:      label,
		FormNumber: formNumber,
		Level:      1,
		Width:      300,
		Height:     300,
	}
	group := cspro.FormGroup{
		Name:       formName,
		Label:      label,
		FormNumber: formNumber,
		Required:   required,
		Max:        maxOccurs,
	}

	maxLabelLen := 0
	for _, item := range items {
		if l := len(item.Labels[0].Text); l > maxLabelLen {
			maxLabelLen = l
		}
	}
	labelWidth := maxLabelLen*labelCharSize + labelWidthPadding

	row := 27
	for _, item := range items {
		const labelX = 50
		text := &cspro.FormText{
			Name:     item.Name + "_LABEL",
			Text:     item.Labels[0].Text,
			Position: &cspro.Position{Left: labelX, Top: row, Right: labelX + labelWidth, Bottom: row + fieldHeight},
		}
		fieldX := labelX + labelWidth
		field := cspro.FormField{
			Name:              item.Name,
			DictionaryItem:    item.Name,
			CaptureType:       captureType(item, itemQuestions),
			Text:              text,
			Position:          &cspro.Position{Left: fieldX, Top: row, Right: fieldX + item.Length*fieldCharSize, Bottom: row + fieldHeight},
			UseUnicodeTextBox: item.ContentType == cspro.ContentAlpha,
			FormNumber:        formNumber,
		}
		group.Items = append(group.Items, field)
		form.ItemNames = append(form.ItemNames, field.Name)
		row += rowOffset
	}
	return form, group
}

// buildRosterForm lays out a repeating record as a grid with one column per
// item and numbered occurrence stubs.
func buildRosterForm(record cspro.Record, itemQuestions map[string]model.Question, formNumber int, formName, label string) (cspro.Form, cspro.FormGroup) {
	roster := cspro.Roster{
		Name:                cspro.ReplaceSuffix(record.Name, "_REC", "_ROSTER"),
		Label:               label,
		FormNumber:          formNumber,
		Required:            false,
		Max:                 record.Occurrences.Maximum,
		TypeName:            record.Name,
		DisplaySize:         cspro.Position{Left: 40, Top: 30},
		Orientation:         "Horizontal",
		UseOccurrenceLabels: true,
	}
	for i := 1; i <= record.Occurrences.Maximum; i++ {
		roster.StubText = append(roster.StubText, cspro.FormText{
			Name: fmt.Sprintf("%s_OCC_%d", record.Name, i),
			Text: strconv.Itoa(i),
		})
	}
	roster.Columns = append(roster.Columns, cspro.RosterColumn{Width: 10})
	for _, item := range record.Items {
		header := &cspro.FormText{Name: item.Name + "_HEADER", Text: item.Labels[0].Text}
		roster.Columns = append(roster.Columns, cspro.RosterColumn{
			HeaderText: header,
			Fields: []cspro.FormField{{
				Name:              item.Name,
				DictionaryItem:    item.Name,
				CaptureType:       captureType(item, itemQuestions),
				Text:              header,
				UseUnicodeTextBox: item.ContentType == cspro.ContentAlpha,
			}},
		})
	}

	group := cspro.FormGroup{
		Name:       formName,
		Label:      label,
		FormNumber: formNumber,
		Required:   record.Occurrences.Required,
		Max:        1,
		Items:      []cspro.GroupItem{roster},
	}
	form := cspro.Form{
		Name:       formName,
		Label:      label,
		FormNumber: formNumber,
		Level:      1,
		Width:      300,
		Height:     300,
		ItemNames:  []string{roster.Name},
	}
	return form, group
}

func (w *CSProWriter) writeLogicFile(q *model.Questionnaire, path string) error {
	w.logger.Info("generating logic file", "path", path)
	content := fmt.Sprintf("{ Application '%s' logic file generated by Survaize }\n", q.Title)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write logic file: %w", err)
	}
	return nil
}

// buildQuestionTextFile emits question text and interviewer instructions as
// HTML snippets, one entry per dictionary item.
func (w *CSProWriter) buildQuestionTextFile(q *model.Questionnaire, dictName string) *cspro.QsfFile {
	languages := []cspro.QsfLanguage{{Name: "EN", Label: "English"}}
	styles := []cspro.QsfStyle{
		{Name: "Normal", ClassName: "normal", CSS: "font-family: Arial;font-size: 16px;"},
		{Name: "Instruction", ClassName: "instruction", CSS: "font-family: Arial;font-size: 14px;color: #0000FF;"},
		{Name: "Heading 1", ClassName: "heading1", CSS: "font-family: Arial;font-size: 36px;"},
		{Name: "Heading 2", ClassName: "heading2", CSS: "font-family: Arial;font-size: 24px;"},
		{Name: "Heading 3", ClassName: "heading3", CSS: "font-family: Arial;font-size: 18px;"},
	}

	var questions []cspro.QsfQuestion
	for _, section := range q.Sections {
		for _, question := range section.Questions {
			base := question.Base()
			html := fmt.Sprintf("<p>%s</p>", base.Text)
			if base.Instructions != "" {
				html += fmt.Sprintf(`<p><span class="instruction">%s</span></p>`, base.Instructions)
			}
			questions = append(questions, cspro.QsfQuestion{
				Name: dictName + "." + cspro.ToSymbol(base.ID),
				Conditions: []cspro.QsfCondition{
					{QuestionText: cspro.QsfText{EN: html}, HelpText: cspro.QsfText{EN: ""}},
				},
			})
		}
	}
	return cspro.NewQsfFile(languages, styles, questions)
}

// writeApplicationFile emits the .ent entry application referencing the other
// generated files.
func (w *CSProWriter) writeApplicationFile(q *model.Questionnaire, appDir, appName string) error {
	path := filepath.Join(appDir, appName+".ent")
	w.logger.Info("generating application file", "path", path)

	symbol := cspro.ToSymbol(q.Title)
	application := map[string]any{
		"software": "CSPro",
		"version":  8.0,
		"fileType": "application",
		"type":     "entry",
		"name":     symbol,
		"label":    symbol,
		"dictionaries": []map[string]string{
			{"type": "input", "path": appName + ".dcf", "parent": appName + ".fmf"},
		},
		"forms":        []string{appName + ".fmf"},
		"questionText": []string{appName + ".ent.qsf"},
		"code":         []map[string]string{{"type": "main", "path": appName + ".ent.apc"}},
		"messages":     []string{appName + ".ent.mgf"},
		"logicSettings": map[string]any{
			"version":       2.0,
			"caseSensitive": map[string]bool{"symbols": false},
			"actionInvoker": map[string]any{
				"accessFromExternalCaller": "promptIfNoValidAccessToken",
				"convertResultsForLogic":   true,
			},
		},
		"properties": map[string]any{
			"askOperatorId":                      false,
			"autoAdvanceOnSelection":             false,
			"caseTree":                           "mobileOnly",
			"centerForms":                        false,
			"createListing":                      false,
			"createLog":                          false,
			"decimalMark":                        "dot",
			"displayCodesAlongsideLabels":        false,
			"notes":                              map[string]string{"delete": "all", "edit": "all"},
			"partialSave":                        map[string]bool{"operatorEnabled": false},
			"showEndCaseMessage":                 true,
			"showOnlyDiscreteValuesInComboBoxes": true,
			"showFieldLabels":                    true,
			"showErrorMessageNumbers":            false,
			"showQuestionText":                   true,
			"showRefusals":                       true,
			"verify":                             map[string]int{"frequency": 1, "start": 1},
			"htmlDialogs":                        true,
			"paradata": map[string]any{
				"collection":                   "all",
				"recordCoordinates":            false,
				"recordInitialPropertyValues":  false,
				"recordIteratorLoadCases":      false,
				"recordValues":                 false,
				"deviceStateIntervalMinutes":   5,
			},
			"useHtmlComponentsInsteadOfNativeVersions": false,
		},
	}

	data, err := json.MarshalIndent(application, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal application file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write application file: %w", err)
	}
	return nil
}

func (w *CSProWriter) writeMessageFile(path string) error {
	w.logger.Info("generating message file", "path", path)
	if err := os.WriteFile(path, []byte("[CSPro Messages]\n"), 0o644); err != nil {
		return fmt.Errorf("write message file: %w", err)
	}
	return nil
}

// Verify interface
var _ Writer = (*CSProWriter)(nil)
