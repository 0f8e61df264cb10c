package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lunarfit/coach-api/internal/domain/coach"
)

// TiktokenCounter counts tokens with the model's real BPE encoding,
// falling back to a whitespace estimate when the encoding is unavailable
// (e.g. offline environments that cannot fetch encoding files).
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter resolves the encoding for the given model.
func NewTiktokenCounter(model string) *TiktokenCounter {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			encoding = nil
		}
	}
	return &TiktokenCounter{encoding: encoding}
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.encoding != nil {
		return len(c.encoding.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}

var _ coach.TokenCounter = (*TiktokenCounter)(nil)
