package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse_FencedBlockWithExplanation(t *testing.T) {
	reply := "Here is your function.\n" +
		"```python\n" +
		"def add(a, b):\n" +
		"    return a + b\n" +
		"```\n" +
		"\n" +
		"EXPLANATION:\n" +
		"Adds two numbers.\n"

	code, explanation := ParseResponse(reply, "python")
	assert.Equal(t, "def add(a, b):\n    return a + b", code)
	assert.Equal(t, "Adds two numbers.", explanation)
}

func TestParseResponse_AliasFence(t *testing.T) {
	reply := "```js\nconsole.log('hi');\n```"

	code, _ := ParseResponse(reply, "javascript")
	assert.Equal(t, "console.log('hi');", code)
}

func TestParseResponse_BareFence(t *testing.T) {
	reply := "```\nprint('x')\n```"

	code, _ := ParseResponse(reply, "python")
	assert.Equal(t, "print('x')", code)
}

func TestParseResponse_NoFence(t *testing.T) {
	reply := "def fib(n):\n    return n"

	code, explanation := ParseResponse(reply, "python")
	assert.Equal(t, reply, code)
	assert.Empty(t, explanation)
}

func TestParseResponse_OnlyFirstBlockKept(t *testing.T) {
	reply := "```python\nfirst = 1\n```\ntext between\n```python\nsecond = 2\n```"

	code, _ := ParseResponse(reply, "python")
	assert.Equal(t, "first = 1", code)
}

func TestHasFencedBlock(t *testing.T) {
	assert.True(t, HasFencedBlock("```python\nx=1\n```", "python"))
	assert.True(t, HasFencedBlock("```py\nx=1\n```", "python"))
	assert.True(t, HasFencedBlock("```\nx=1\n```", "ruby"))
	assert.False(t, HasFencedBlock("```go\nx:=1\n```", "python"))
	assert.False(t, HasFencedBlock("no code here", "python"))
}

func TestBuild_PinsResponseFormat(t *testing.T) {
	p := Build("write a fibonacci function", "python")
	assert.Contains(t, p, "REQUEST: write a fibonacci function")
	assert.Contains(t, p, "LANGUAGE: python")
	assert.Contains(t, p, "```python")
	assert.Contains(t, p, "EXPLANATION:")
}
