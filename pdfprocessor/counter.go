package pdfprocessor

// counter.go implements the Counter, which resolves a model name to a BPE
// vocabulary via tiktoken-go and counts tokens.

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

// DefaultModel is the model whose vocabulary is used when none is configured.
const DefaultModel = "gpt-4"

// ErrUnknownModel is returned when a model name has no known encoding.
var ErrUnknownModel = errors.New("no known token encoding for model")

// ErrSpecialToken is returned when text contains one of the encoding's
// special tokens, such as "<|endoftext|>". Those are control tokens, not
// document text, so the text is rejected rather than counted.
var ErrSpecialToken = errors.New("text contains disallowed special token")

// specialTokens lists the special tokens of each encoding by codec name.
var specialTokens = map[string][]string{
	"r50k_base":   {"<|endoftext|>"},
	"p50k_base":   {"<|endoftext|>"},
	"p50k_edit":   {"<|endoftext|>", "<|fim_prefix|>", "<|fim_middle|>", "<|fim_suffix|>"},
	"cl100k_base": {"<|endoftext|>", "<|fim_prefix|>", "<|fim_middle|>", "<|fim_suffix|>", "<|endofprompt|>"},
	"o200k_base":  {"<|endoftext|>", "<|endofprompt|>"},
}

// Count is the outcome of counting one text.
type Count struct {
	Tokens     int
	Characters int
}

// Counter counts tokens with a fixed vocabulary.
type Counter struct {
	model string
	codec tokenizer.Codec
}

// NewCounter resolves model to its encoding. Model names such as "gpt-4" are
// tried first; an encoding name such as "cl100k_base" is accepted as well.
//
// Example:
//
//	counter, err := NewCounter("gpt-4")
//	if err != nil {
//	    return err
//	}
//	c, _ := counter.Count("Hello, world!") // c.Tokens == 4
func NewCounter(model string) (*Counter, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: empty model name", ErrUnknownModel)
	}

	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Encoding(model))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
		}
	}

	return &Counter{model: model, codec: codec}, nil
}

// Model returns the model name the counter was built for.
func (c *Counter) Model() string {
	return c.model
}

// Count encodes text and returns its token count and its length in
// characters (Unicode code points). Text containing a special token of the
// encoding fails with ErrSpecialToken.
func (c *Counter) Count(text string) (Count, error) {
	for _, token := range specialTokens[c.codec.GetName()] {
		if strings.Contains(text, token) {
			return Count{}, fmt.Errorf("%w %q", ErrSpecialToken, token)
		}
	}

	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return Count{}, fmt.Errorf("failed to encode text: %w", err)
	}
	return Count{
		Tokens:     len(ids),
		Characters: CharacterCount(text),
	}, nil
}

// CharacterCount returns the number of Unicode code points in text.
// Invalid UTF-8 bytes count as one character each.
func CharacterCount(text string) int {
	return utf8.RuneCountInString(text)
}
