package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

// engineResponse is the part of the engine's response envelope that reports failures.
// Rejections arrive either under "error" (with per-command details) or, for
// older engines, as a top-level "errors" list on an otherwise successful status.
type engineResponse struct {
	Error  *engineError  `json:"error"`
	Errors []errorDetail `json:"errors"`
}

type engineError struct {
	Msg     string        `json:"msg"`
	Details []errorDetail `json:"details"`
}

type errorDetail struct {
	ErrorMessages schemacodec.StringList `json:"errorMessages"`
}

// rejectionMessages extracts the engine's error messages from a response body.
// It returns nil when the body reports no failure or cannot be parsed.
func rejectionMessages(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	var resp engineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}

	var messages []string
	collect := func(details []errorDetail) {
		for _, d := range details {
			for _, m := range d.ErrorMessages {
				if m = strings.TrimSpace(m); m != "" {
					messages = append(messages, m)
				}
			}
		}
	}

	if resp.Error != nil {
		collect(resp.Error.Details)
		if len(messages) == 0 && strings.TrimSpace(resp.Error.Msg) != "" {
			messages = append(messages, strings.TrimSpace(resp.Error.Msg))
		}
	}
	collect(resp.Errors)
	return messages
}

// hasRejection reports whether a body carries an error section.
func hasRejection(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	var resp engineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.Error != nil || len(resp.Errors) > 0
}

func joinMessages(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return errors.New(strings.Join(messages, "; "))
}
