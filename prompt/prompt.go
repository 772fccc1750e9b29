// Package prompt builds the instruction text sent to code-generation providers
// and parses their replies back into code and explanation. Keeping both sides
// here means every adapter speaks the same dialect: the same system
// instruction, the same fenced-block response format, the same EXPLANATION
// marker.
package prompt

import (
	"fmt"
	"strings"
)

// SystemInstruction is the system role content shared by all providers.
const SystemInstruction = "You are an expert software engineer and coding assistant."

// Build renders the enhanced generation prompt for a user request. The format
// pins the reply to a fenced code block followed by an EXPLANATION section so
// ParseResponse can recover both parts deterministically.
func Build(request, language string) string {
	var b strings.Builder
	b.WriteString("Generate high-quality, production-ready code based on this request.\n\n")
	fmt.Fprintf(&b, "REQUEST: %s\nLANGUAGE: %s\n\n", request, language)
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("1. Write clean, well-structured, and commented code\n")
	b.WriteString("2. Include error handling where appropriate\n")
	b.WriteString("3. Follow best practices for the specified language\n")
	b.WriteString("4. Make the code modular and reusable\n")
	b.WriteString("5. Include any necessary imports/dependencies\n")
	b.WriteString("6. Provide a brief explanation of what the code does\n\n")
	b.WriteString("RESPONSE FORMAT:\n")
	fmt.Fprintf(&b, "```%s\n[Generated Code Here]\n```\n\n", language)
	b.WriteString("EXPLANATION:\n[Brief explanation of the code functionality]\n")
	return b.String()
}

// BuildAnalysis renders the code-review prompt used by the analyze operation.
func BuildAnalysis(code, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s code for:\n", language)
	b.WriteString("1. Potential bugs or errors\n")
	b.WriteString("2. Code quality and best practices\n")
	b.WriteString("3. Performance improvements\n")
	b.WriteString("4. Security vulnerabilities\n")
	b.WriteString("5. Suggestions for enhancement\n\n")
	fmt.Fprintf(&b, "CODE:\n```%s\n%s\n```\n\n", language, code)
	b.WriteString("Provide detailed analysis with specific recommendations.\n")
	return b.String()
}
