package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"agreement-radar/logic/ingestion/processors"
	"agreement-radar/vars"
)

// ErrEmptyCompletion is returned when the model answers with no content.
var ErrEmptyCompletion = errors.New("completion returned no content")

// FieldExtractor asks the completion service for the agreement fields and
// returns its raw answer; callers must normalize it before trusting it.
type FieldExtractor struct {
	chatModel model.BaseChatModel
	modelName string
}

func NewFieldExtractor(chatModel model.BaseChatModel, modelName string) *FieldExtractor {
	return &FieldExtractor{chatModel: chatModel, modelName: modelName}
}

// ModelName identifies the model recorded on the agreement.
func (e *FieldExtractor) ModelName() string {
	return e.modelName
}

func (e *FieldExtractor) Extract(ctx context.Context, text string) (string, error) {
	resp, err := e.chatModel.Generate(ctx, BuildMessages(text))
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyCompletion
	}

	raw := StripFences(resp.Content)
	if raw == "" {
		return "", ErrEmptyCompletion
	}
	return raw, nil
}

// BuildMessages renders the fixed instruction with the (truncated) text.
func BuildMessages(text string) []*schema.Message {
	lines := append([]string{}, vars.EXTRACT_INSTRUCTIONS...)
	lines = append(lines, processors.Truncate(text, vars.MaxPromptChars))

	return []*schema.Message{
		schema.SystemMessage(vars.SYSTEM_PROMPT),
		schema.UserMessage(strings.Join(lines, "\n")),
	}
}

// StripFences removes a surrounding markdown code block, which some models add
// even when asked for bare JSON.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
