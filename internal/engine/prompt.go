package engine

import (
	"fmt"
	"strings"
)

// OutlinePrompt is the system prompt for the topic-expansion stage.
const OutlinePrompt = `You are an expert podcast planner. Create a detailed outline for a 3-5 minute podcast discussion between two speakers using the provided research context.

Focus on:
1. Breaking down complex concepts from the research
2. Including specific examples from the provided context
3. Natural conversation flow
4. Key insights and their implications`

// ScriptPrompt is the system prompt for the script-generation stage.
const ScriptPrompt = `You are a professional podcast script writer. Create a natural conversation between two speakers based on the research context and outline provided.

Guidelines:
- Speaker 1 is the host who asks insightful questions and seeks clarification
- Speaker 2 is the expert who explains the research findings
- Include natural elements like "umm", "hmm" for Speaker 2
- Reference specific findings from the research
- Keep the tone conversational yet informative
- Ensure the script runs 3-5 minutes when read aloud
- Keep the retrieved content accurate while making it engaging

Label every line as "Speaker 1:" or "Speaker 2:" only. Do not invent names; the labels drive per-speaker audio synthesis.`

// renderContext formats the retrieval answer and evidence for prompt use.
func renderContext(answer string, evidence []string) string {
	return fmt.Sprintf("Answer: %s\nEvidence: %s", answer, strings.Join(evidence, " "))
}

// buildOutlinePrompt constructs the user message for topic expansion.
func buildOutlinePrompt(topic, contextText string, transcript []string) string {
	return fmt.Sprintf(
		"Topic: %s\n\nResearch Context:\n%s\n\nCurrent conversation:\n%s",
		topic,
		contextText,
		strings.Join(transcript, "\n"),
	)
}

// buildScriptPrompt constructs the user message for script generation. The
// outline is the most recent assistant message.
func buildScriptPrompt(contextText string, transcript []string, outline string) string {
	return fmt.Sprintf(
		"Research Context:\n%s\n\nPrevious messages:\n%s\n\nOutline:\n%s",
		contextText,
		strings.Join(transcript, "\n"),
		outline,
	)
}

// buildGeneratorContext renders the context string handed to the flashcard
// and quiz generators.
func buildGeneratorContext(question, answer string, evidence []string) string {
	return fmt.Sprintf(
		"Question: %s\nAnswer: %s\nEvidence: %s",
		question,
		answer,
		strings.Join(evidence, " "),
	)
}
