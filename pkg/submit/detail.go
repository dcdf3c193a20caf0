package submit

import (
	"encoding/json"
	"io"
	"strings"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 1 << 20

// errorBody matches the error payloads the generation service returns:
// {"detail": "..."} for handled failures and {"detail": [{"msg": ...}]} for
// request validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// readDetail extracts the human-readable detail from an error response. Any
// failure to read or decode the body yields "". The detail is returned as
// the server wrote it; only "" counts as absent.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	return parseDetail(raw)
}

func parseDetail(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return text
	}

	var issues []validationIssue
	if err := json.Unmarshal(body.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
