package extraction

import (
	"fmt"

	"invoice-backend/internal/ingest"
	"invoice-backend/internal/llm"
)

// Input is the caller's choice of payload. Exactly one of Binary or Text
// must be set.
type Input struct {
	Binary *ingest.BinaryContent
	Text   string
}

// Request is what is sent to the model.
type Request struct {
	Prompt      string
	Attachments []llm.Attachment
}

// InputFromContent converts a normalized upload into an Input.
func InputFromContent(c ingest.Content) (Input, error) {
	switch v := c.(type) {
	case ingest.TextContent:
		return Input{Text: v.Value}, nil
	case ingest.BinaryContent:
		return Input{Binary: &v}, nil
	case nil:
		return Input{}, ErrMissingInput
	default:
		return Input{}, fmt.Errorf("%w: unknown content %T", ErrMissingInput, c)
	}
}

func (in Input) validate() error {
	hasBinary := in.Binary != nil
	hasText := in.Text != ""
	switch {
	case hasBinary && hasText:
		return fmt.Errorf("%w: ambiguous input, both file and text supplied", ErrMissingInput)
	case !hasBinary && !hasText:
		return ErrMissingInput
	}
	return nil
}

// BuildRequest pairs the fixed instruction with the payload. The binary
// bytes are attached unchanged; text is appended under an "Invoice Text:" header.
func BuildRequest(in Input) (Request, error) {
	if err := in.validate(); err != nil {
		return Request{}, err
	}
	if in.Binary != nil {
		return Request{
			Prompt:      Instruction,
			Attachments: []llm.Attachment{{Data: in.Binary.Data, MimeType: in.Binary.MimeType}},
		}, nil
	}
	return Request{Prompt: Instruction + textHeader + in.Text}, nil
}
