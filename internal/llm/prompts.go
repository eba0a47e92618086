package llm

import _ "embed"

var (
	//go:embed prompts/structure_v1.txt
	structurePromptV1 string
	//go:embed prompts/transcribe_v1.txt
	transcribePromptV1 string
)

// StructurePrompt returns the developer prompt for resume structuring.
func StructurePrompt() string {
	return structurePromptV1
}

// TranscribePrompt returns the instruction for vision transcription.
func TranscribePrompt() string {
	return transcribePromptV1
}
