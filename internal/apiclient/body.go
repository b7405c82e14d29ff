package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// parseFailure explains why a success response could not be used as JSON
type parseFailure struct {
	contentType string
	err         error
}

func (f *parseFailure) String() string {
	if f.err != nil {
		return fmt.Sprintf("malformed JSON body: %v", f.err)
	}
	if f.contentType == "" {
		return "response has no content type"
	}
	return fmt.Sprintf("expected JSON but received %s", f.contentType)
}

// parseBody turns a success response into its JSON body. A nil body with a nil
// failure means the response intentionally carried no content.
func parseBody(status int, header http.Header, data []byte) (json.RawMessage, *parseFailure) {
	if status == http.StatusNoContent {
		return nil, nil
	}

	contentType := header.Get("Content-Type")
	if !isJSON(contentType) {
		return nil, &parseFailure{contentType: contentType}
	}

	var raw json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, &parseFailure{contentType: contentType, err: err}
	}
	return raw, nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// encodeBody marshals a request body; raw bytes and json.RawMessage are sent as-is
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

// attachmentName reads the filename of a Content-Disposition header
func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
