package interpreter

// ScannedQuestionnaire is the output of a reader: one PNG render per page
// plus the OCR text extracted from it. Pages and ExtractedText are paired
// positionally.
type ScannedQuestionnaire struct {
	Pages         [][]byte
	ExtractedText []string
	Source        string
}

// NumPages returns the number of usable pages. When the image and text lists
// disagree in length the document is truncated to the shorter one.
func (s *ScannedQuestionnaire) NumPages() int {
	n := len(s.Pages)
	if len(s.ExtractedText) < n {
		n = len(s.ExtractedText)
	}
	return n
}
