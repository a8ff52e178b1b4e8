package formresponses

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

// column is one exported question: the block id keys the answer lookup,
// the label becomes the CSV header.
type column struct {
	blockID string
	label   string
}

// exportColumns walks the form's blocks in order and collects the
// answer-bearing ones. Display-only blocks (welcome screens, statements)
// are skipped; group blocks are flattened into their inner questions.
func exportColumns(form *formTypes.FormDocument) []column {
	if form == nil || form.Structure == nil {
		return nil
	}

	columns := []column{}
	addBlock := func(b formTypes.Block) {
		if !formTypes.IsQuestionKind(b.Name) {
			return
		}
		label := strings.TrimSpace(b.Attributes.Label)
		if label == "" {
			label = b.ID
		}
		columns = append(columns, column{blockID: b.ID, label: label})
	}

	for _, b := range form.Structure.Blocks {
		if b.Name == formTypes.BLOCK_KIND_GROUP {
			for _, inner := range b.InnerBlocks {
				addBlock(inner)
			}
			continue
		}
		addBlock(b)
	}
	return columns
}

// formatAnswer renders a single answer cell. Multi-select answers are
// joined with ", "; quoting and escaping is left to the CSV writer.
func formatAnswer(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatAnswer(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// WriteCSV streams the form's responses as CSV: one fixed column pair for
// response id and submission time, then one column per question in form
// order.
func WriteCSV(w io.Writer, form *formTypes.FormDocument, responses []formTypes.FormResponse) error {
	columns := exportColumns(form)

	writer := csv.NewWriter(w)
	header := []string{"Response ID", "Submitted At"}
	for _, col := range columns {
		header = append(header, col.label)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, response := range responses {
		row := []string{response.ID.Hex(), response.CreatedAt.UTC().Format(time.RFC3339)}
		for _, col := range columns {
			answer, ok := response.Answers[col.blockID]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatAnswer(answer.Value))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// Filename derives the download file name from the form title.
func Filename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = formTypes.DEFAULT_FORM_TITLE
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", "\"", "", "\n", " ", "\r", " ")
	return replacer.Replace(title) + "-responses.csv"
}
