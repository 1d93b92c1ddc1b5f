package ai

import (
	"fmt"
	"strings"
)

const extractionInstructions = `You classify incoming parliamentary items against a fixed tag vocabulary.

Rules:
- "matched_tags" may only contain tag names that appear verbatim in the vocabulary below. Do not invent variations.
- "suggested_new_tags" may contain up to 5 short tag names for clearly relevant topics missing from the vocabulary.
- "summary" is a 2-3 sentence plain-language summary of what the item asks or commits to, in the language of the item.
- When in doubt, match fewer tags rather than more.`

// BuildExtractionPrompt renders the tag-extraction prompt for one item.
func BuildExtractionPrompt(req ExtractRequest) string {
	var b strings.Builder

	b.WriteString(extractionInstructions)
	b.WriteString("\n\nVocabulary:\n")
	for _, tag := range req.ExistingTags {
		b.WriteString("- ")
		b.WriteString(tag)
		b.WriteString("\n")
	}

	if req.ContextHint != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", req.ContextHint)
	}

	fmt.Fprintf(&b, "\nItem title: %s\n", req.Title)
	if req.Subject != "" {
		fmt.Fprintf(&b, "Item subject: %s\n", req.Subject)
	}
	if req.DocumentText != "" {
		fmt.Fprintf(&b, "\nItem text:\n%s\n", req.DocumentText)
	}

	return b.String()
}
