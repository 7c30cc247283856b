package cspro

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QsfLanguage is a language entry of the question text file.
type QsfLanguage struct {
	Name  string `yaml:"name" json:"name"`
	Label string `yaml:"label" json:"label"`
}

// QsfStyle is a named CSS style for question text.
type QsfStyle struct {
	Name      string `yaml:"name" json:"name"`
	ClassName string `yaml:"className" json:"className"`
	CSS       string `yaml:"css" json:"css"`
}

// QsfText is localized text; only English is emitted.
type QsfText struct {
	EN string `yaml:"EN" json:"EN"`
}

// QsfCondition pairs question text with help text.
type QsfCondition struct {
	QuestionText QsfText `yaml:"questionText" json:"questionText"`
	HelpText     QsfText `yaml:"helpText" json:"helpText"`
}

// QsfQuestion is the question text entry for one dictionary item.
type QsfQuestion struct {
	Name       string         `yaml:"name" json:"name"`
	Conditions []QsfCondition `yaml:"conditions" json:"conditions"`
}

// QsfFile is a complete CSPro question text file.
type QsfFile struct {
	FileType  string        `yaml:"fileType" json:"fileType"`
	Version   string        `yaml:"version" json:"version"`
	Languages []QsfLanguage `yaml:"languages" json:"languages"`
	Styles    []QsfStyle    `yaml:"styles" json:"styles"`
	Questions []QsfQuestion `yaml:"questions" json:"questions"`
}

// NewQsfFile creates a question text file with the standard header.
func NewQsfFile(languages []QsfLanguage, styles []QsfStyle, questions []QsfQuestion) *QsfFile {
	return &QsfFile{
		FileType:  "Question Text",
		Version:   "CSPro 8.0",
		Languages: languages,
		Styles:    styles,
		Questions: questions,
	}
}

// Save writes the file as YAML with explicit document start/end markers.
func (q *QsfFile) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(q); err != nil {
		return fmt.Errorf("marshal question text: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize question text: %w", err)
	}
	buf.WriteString("...")

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write question text: %w", err)
	}
	return nil
}
