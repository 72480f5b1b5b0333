package prompt

import (
	"fmt"
	"strings"
)

const CodeTmpl = "You are a helpful coding assistant. Generate code for the following prompt: %s"

const ClassifyTmpl = "Classify the following text: '%s' into one of the following categories: %s. Only return the category name."

func Code(prompt string) string {
	return fmt.Sprintf(CodeTmpl, prompt)
}

func Classify(text string, categories []string) string {
	return fmt.Sprintf(ClassifyTmpl, text, strings.Join(categories, ", "))
}
