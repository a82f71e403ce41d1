package llm

import "strings"

// Turn markers of the chat template the generation model was tuned on.
const (
	StartOfTurn = "<start_of_turn>"
	EndOfTurn   = "<end_of_turn>"

	assistantMarker = StartOfTurn + "assistant"

	systemInstruction = "You are a precise assistant for visual scene analysis. " +
		"Follow instructions exactly and respond concisely."
)

// FormatPrompt embeds the user prompt verbatim in the three-turn chat
// template, leaving the assistant turn open so generation continues from it.
func FormatPrompt(userPrompt string) string {
	return StartOfTurn + "system\n" +
		systemInstruction + "\n" +
		EndOfTurn + "\n" +
		StartOfTurn + "user\n" +
		userPrompt + "\n" +
		EndOfTurn + "\n" +
		StartOfTurn + "assistant\n"
}

// ExtractReply recovers the assistant's reply from the full decoded model
// output. Everything after the last assistant marker is taken, truncated at
// the next turn marker. If the model did not reproduce the template, the
// whole text is returned trimmed.
func ExtractReply(full string) string {
	if !strings.Contains(full, assistantMarker) {
		return strings.TrimSpace(full)
	}

	idx := strings.LastIndex(full, assistantMarker)
	part := full[idx+len(assistantMarker):]
	part = strings.TrimLeft(part, "\n ")

	if i := strings.Index(part, EndOfTurn); i >= 0 {
		part = part[:i]
	}
	// a model may open a new turn without closing the current one
	if i := strings.Index(part, StartOfTurn); i >= 0 {
		part = part[:i]
	}

	return strings.TrimSpace(part)
}
