package runtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atelabs/atelier/pkg/domain"
)

// DecodeReply extracts and decodes the JSON object from a model reply. Models
// routinely wrap the payload in markdown fences or a leading "json" tag, so
// the reply is trimmed down to its outermost braces before decoding.
func DecodeReply(reply string, out any) error {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)

	open := strings.Index(s, "{")
	close_ := strings.LastIndex(s, "}")
	if open < 0 || close_ < open {
		return fmt.Errorf("%w: no JSON object in reply", domain.ErrParse)
	}
	s = s[open : close_+1]

	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	return nil
}
