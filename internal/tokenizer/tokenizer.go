package tokenizer

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens and truncates text to a token budget. Counting is
// deterministic: the same text always yields the same count.
type Counter interface {
	// Count returns the number of tokens in text.
	Count(text string) int
	// Truncate returns text trimmed to at most maxTokens tokens. Text
	// already within the budget is returned unchanged.
	Truncate(text string, maxTokens int) string
	// Encoding identifies the bound tokenizer encoding, e.g. "cl100k_base".
	Encoding() string
}

// Tiktoken wraps a tiktoken BPE encoding.
type Tiktoken struct {
	enc  *tiktoken.Tiktoken
	name string
}

// NewTiktoken binds a counter to a named encoding such as "cl100k_base".
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc, name: encoding}, nil
}

// NewTiktokenForModel binds a counter to the encoding used by an OpenAI
// model name, e.g. "text-embedding-3-small".
func NewTiktokenForModel(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: encoding for model %q: %w", model, err)
	}
	return &Tiktoken{enc: enc, name: model}, nil
}

func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) Truncate(text string, maxTokens int) string {
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:maxTokens])
}

func (t *Tiktoken) Encoding() string {
	return t.name
}
