package interpreter

import "fmt"

// Prompts for the two page processors. The extraction rules are shared; the
// framing differs: page 1 asks for the full document, later pages ask only
// for this page's increment resumed from the previous page's context.

const extractionRules = `- Section ID (derived from the title, lowercase with underscores)
- Section number
- Section title
- Section description (if present)
- Universe (which respondent the section is intended for, if present)
- Occurrences (how many times the section is repeated. Repeated sections are often represented as tables with multiple rows in which case count the rows, otherwise estimate based on the topic/questions in the section e.g. if the section is about household members, it may be repeated for each member of the household). **Always include this field with an integer value, even if it must be estimated.**

For each question extract:
- Question number
- Question ID (derived from the question, lowercase with underscores)
- Text of the question to be read to the respondent
- Instructions to the interviewer (if present)
- Question type (either single_select, multi_select, numeric, text, date, location) **(required)**. **Only use these exact values; do not create new question types.**
- Single_select and multi_select questions will have a list of responses; for those questions extract the code and label for each response. **Every option needs a code; use numbers if missing.**
- Numeric questions have minimum and maximum values which can be inferred. For the maximum, examine the image of the question and count the answer boxes next to or under it: 2 boxes means a maximum of 99. If the length cannot be determined from the image, infer a reasonable value from the question itself, e.g. a maximum age of 120. For the minimum, infer a reasonable value from the question. If there is no information to infer the bounds, omit them from the output.
- Text questions have a maximum length inferred from the number of answer boxes; if there is no information to infer it, omit the field.

Ensure every object includes all required properties as shown in the example. Provide a best guess or placeholder when the value is not explicit rather than omitting the field.`

const firstPageExample = `{
  "title": "Survey Title",
  "description": "A national household survey",
  "id_fields": ["cluster", "household_number"],
  "sections": [
    {
      "id": "section_a",
      "number": "A",
      "title": "Household Information",
      "description": "Basic information about the household",
      "universe": "Respondents over 18 years old",
      "occurrences": 20,
      "questions": [
        {"type": "numeric", "number": "A1", "id": "cluster", "text": "Enter cluster number for household from sample", "min_value": 1, "max_value": 99},
        {"type": "numeric", "number": "A2", "id": "household_number", "text": "Enter household number from sample", "min_value": 1, "max_value": 999},
        {"type": "text", "number": "A3", "id": "name", "text": "What is your name?", "instructions": "Please enter the full name", "max_length": 99},
        {"type": "numeric", "number": "A4", "id": "age", "text": "What is your age?", "instructions": "Please enter the age in years", "min_value": 0, "max_value": 120},
        {"type": "date", "number": "A5", "id": "birth_date", "text": "What is your date of birth?"},
        {"type": "single_select", "number": "A6", "id": "gender", "text": "What is your gender?", "options": [{"code": "1", "label": "Male"}, {"code": "2", "label": "Female"}]}
      ]
    }
  ],
  "trailing_sections": [
    {"id": "section_a", "question_ids": ["birth_date", "gender"]}
  ]
}`

const partialPageExample = `{
  "sections": [
    {
      "id": "section_b",
      "number": "B",
      "title": "Education Information",
      "description": "Information about educational background",
      "universe": "Household members aged 5 and above",
      "occurrences": 50,
      "questions": [
        {"type": "single_select", "number": "B1", "id": "edu_level", "text": "What is the highest level of education completed?", "options": [{"code": "1", "label": "None"}, {"code": "2", "label": "Primary"}, {"code": "3", "label": "Secondary"}, {"code": "4", "label": "Tertiary"}]}
      ]
    }
  ],
  "trailing_sections": [
    {"id": "section_b", "question_ids": ["edu_level"]}
  ]
}`

func firstPagePrompt() string {
	return fmt.Sprintf(`You are an expert in implementing CAPI survey instruments for surveys. Your job is to read a paper questionnaire and convert it to a structured format that can be used for further processing.

Given the first page of a questionnaire as an image, along with the OCR text from the page, produce a JSON representation of the page of the questionnaire that follows the given schema.

IMPORTANT: The JSON you produce must be a valid Questionnaire object containing all sections and questions found on the first page. Also include a trailing_sections field listing any sections that may continue on the next page with the ids of the last question(s) on this page.

Proceed as follows:

1. Identify the title of the survey
2. Identify any description of the survey
3. Identify the sections of the survey and for each section and its questions extract:
%s
4. Identify the id_fields for the questionnaire. These must be a subset of the ids from questions in the questionnaire. They are usually at the start of the questionnaire and combined will uniquely identify the questionnaire. They are often geographic identifiers, household identifiers, or respondent identifiers or codes from the sample.

Here is an example of the output you should produce:
`+"```json\n%s\n```", extractionRules, firstPageExample)
}

func subsequentPagePrompt(pageNumber int) string {
	return fmt.Sprintf(`You are an expert in implementing CAPI survey instruments for surveys. Your job is to read a paper questionnaire and convert it to a structured format that can be used for further processing.

Given page %d of a questionnaire as an image, along with the OCR text from the page, produce a JSON representation of just the sections and questions found on this page.

IMPORTANT: The JSON you produce must be a valid PartialQuestionnaire object containing only the sections and questions found on this page. If a section continues from a previous page, include only the new questions found on this page and use the previous_page_context to resume it. Identify any sections with questions that appear incomplete or are likely to continue on the next page (usually the last question in each column) and list their section id and question id(s) in a trailing_sections field. Do not include questions that are fully complete.

Proceed as follows:

1. Identify any new sections that begin on this page.
2. For questions that belong to a section from a previous page, include that section with its ID but only the new questions.
3. For each section and its questions extract:
%s

Here is an example of the output you should produce:
`+"```json\n%s\n```", pageNumber, extractionRules, partialPageExample)
}
