package prompt

import (
	"strings"
	"testing"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if set.Assistant == "" {
		t.Fatal("assistant prompt is empty")
	}
	if strings.TrimSpace(set.Assistant) != set.Assistant {
		t.Fatal("assistant prompt is not trimmed")
	}
}
