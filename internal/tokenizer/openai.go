package tokenizer

import (
	"errors"

	"github.com/pkoukk/tiktoken-go"
)

var errNilEncoder = errors.New("nil tiktoken encoder")

// openAICounter counts tokens with a tiktoken encoding.
type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoder
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
