package llm

import (
	"encoding/json"
	"fmt"

	"tonify/internal/trait"
)

const scoreSystemPrompt = `You are a writing-style analyst. Given a text sample, estimate the author's style on six dimensions: formality, brevity, humor, warmth, directness, expressiveness. Each dimension is a number between -1.0 and 1.0, where 0 is neutral. Respond with a JSON object containing exactly those six keys and numeric values, nothing else.`

const narrativeSystemPrompt = `You are a writing-style coach. Given a style profile of six dimensions (each between -1.0 and 1.0), respond with a JSON object with exactly three string fields:
"title": a short evocative name for this tone (max 5 words),
"summary": two or three sentences describing how this person writes,
"prompt": an instruction paragraph that tells an AI assistant to write in this tone.`

const examplesSystemPrompt = `You are a writing-style coach. Given a style profile of six dimensions (each between -1.0 and 1.0), respond with a JSON object with one field "examples": an array of exactly 4 strings written in that style, in this order: a professional email, a social media post, a customer-service reply, a short creative piece.`

func buildScoreUserPrompt(text string) string {
	return fmt.Sprintf("Analyze the style of this text:\n\n%s", text)
}

func buildTraitsUserPrompt(traits trait.Vector) string {
	// Marshal of a plain struct with known fields cannot fail.
	encoded, _ := json.Marshal(traits)
	return fmt.Sprintf("Style profile:\n%s", encoded)
}
