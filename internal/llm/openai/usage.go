package openai

import "log"

func logUsage(model string, promptTokens, completionTokens, totalTokens int) {
	log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, promptTokens, completionTokens, totalTokens)
}
