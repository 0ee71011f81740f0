package app

import (
	"fmt"
	"strings"
)

const chunkSeparator = "\n\n---\n\n"

const groundingInstructions = `You are an assistant that answers questions about a single document.
Answer using only the information contained in the document content you are given.

RULES:
1. Use nothing but the provided document content.
2. When the answer is not in the document, say so plainly: "I cannot find this information in the document".
3. Quote numbers, amounts and dates exactly as the document writes them, including currency.
4. Be concise, but include every related piece of information the document gives.
5. Budgets, dates, stakeholders and next steps must be extracted precisely.
6. Never guess or add facts that the document does not state.
7. Use bullet points or numbered lists whenever you list several items.

FORMAT:
- Single facts: the exact information plus the context it appears in
- Lists: bullet points or numbered lists
- Overviews: a short summary followed by the key details`

const summaryInstructions = `Write a well-structured summary of the document below. Cover:

1. **Main Topic/Purpose**: what the document is about
2. **Key Points**: the most important points, as bullet points
3. **Important Dates/Deadlines**: significant dates or timelines
4. **Budget/Financial Information**: financial figures and budget details
5. **Key Stakeholders**: people or organizations that matter
6. **Action Items/Next Steps**: what needs to happen next`

func buildDocumentPrompt(question, document string) string {
	return fmt.Sprintf("%s\n\nDOCUMENT CONTENT:\n%s\n\nUSER QUESTION: %s\n\nANSWER (based ONLY on the document content above):",
		groundingInstructions, document, question)
}

func buildChunkPrompt(question string, chunks []string) string {
	return fmt.Sprintf("%s\n\nRELEVANT DOCUMENT SECTIONS:\n%s\n\nUSER QUESTION: %s\n\nANSWER (based ONLY on the document sections above):",
		groundingInstructions, strings.Join(chunks, chunkSeparator), question)
}

func buildSummaryPrompt(document string) string {
	return fmt.Sprintf("%s\n\nDOCUMENT:\n%s\n\nSTRUCTURED SUMMARY:", summaryInstructions, document)
}
