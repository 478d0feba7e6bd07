package chat

import (
	"fmt"
	"strings"

	"deepread/internal/models"
)

const contextHeader = "Use the following passages from the document to answer the question. " +
	"If the passages do not contain the answer, say so."

const noContextHeader = "No relevant passages were found in the document. " +
	"Answer the question from general knowledge and say that the document did not cover it."

// BuildPrompt assembles the augmented prompt for one turn: an explanatory
// header, the retrieved passages enumerated in rank order, then the literal
// user question. With no passages it falls back to a context-free phrasing
// that still carries the question verbatim.
func BuildPrompt(question string, passages []models.RetrievedPassage) string {
	var b strings.Builder
	if len(passages) == 0 {
		b.WriteString(noContextHeader)
	} else {
		b.WriteString(contextHeader)
		b.WriteString("\n\nContext:\n")
		for i, p := range passages {
			fmt.Fprintf(&b, "%d. (page %d) %s\n", i+1, p.PageNumber, p.Text)
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
