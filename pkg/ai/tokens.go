package ai

import (
	"github.com/pkoukk/tiktoken-go"
)

// TruncateToTokenBudget cuts content down to at most budget tokens
// using the o200k_base encoding. Content within budget is returned
// unchanged. A budget <= 0 returns the empty string.
func TruncateToTokenBudget(content string, budget int) (string, error) {
	if budget <= 0 {
		return "", nil
	}
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return "", err
	}
	tokens := enc.Encode(content, nil, nil)
	if len(tokens) <= budget {
		return content, nil
	}
	return enc.Decode(tokens[:budget]), nil
}
