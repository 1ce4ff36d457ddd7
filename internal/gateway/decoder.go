package gateway

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
)

const (
	// MessageUnexpected is shown when no response was received.
	MessageUnexpected = "An unexpected error occurred. Please check your connection and try again."
	// MessageCancelled is shown when the caller gave up before a response arrived.
	MessageCancelled = "The request was cancelled before it completed."

	messageBadRequest    = "Invalid request. Please check your inputs and try again."
	messageUnauthorized  = "Unauthorized. Please check your API key."
	messageQuotaExceeded = "API quota exceeded. Please try again later."
)

var htmlStripper = func() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return policy
}()

// DecodeError turns an exchange outcome into exactly one display string.
// Server-supplied details always win over the status-code table, including
// details carried by binary bodies.
func DecodeError(operation string, o Outcome) string {
	switch o.Kind {
	case OutcomeOK:
		return ""
	case OutcomeTransportError:
		if o.Err != nil {
			return o.Err.Error()
		}
		return MessageUnexpected
	case OutcomeHTTPError:
		if message, ok := bodyMessage(o); ok {
			return message
		}
		return statusMessage(operation, o)
	case OutcomeCancelled:
		return MessageCancelled
	default:
		return MessageUnexpected
	}
}

func bodyMessage(o Outcome) (string, bool) {
	switch o.BodyKind {
	case BodyJSON:
		return detailOf(o.Body)
	case BodyBinary:
		text := strings.TrimSpace(strings.ToValidUTF8(string(o.Body), string(utf8.RuneError)))
		if text == "" {
			return "", false
		}
		if gjson.Valid(text) {
			if detail, ok := detailOf([]byte(text)); ok {
				return detail, true
			}
			return text, true
		}
		if isHTML(o.ContentType, text) {
			if stripped := stripHTML(text); stripped != "" {
				return stripped, true
			}
			return "", false
		}
		return text, true
	default:
		return "", false
	}
}

// detailOf extracts the detail field of a JSON error body. Validation errors
// arrive as a list of objects carrying msg.
func detailOf(body []byte) (string, bool) {
	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists() || detail.Type == gjson.Null:
		return "", false
	case detail.Type == gjson.String:
		value := strings.TrimSpace(detail.String())
		return value, value != ""
	case detail.IsArray():
		messages := make([]string, 0, len(detail.Array()))
		for _, item := range detail.Array() {
			if msg := strings.TrimSpace(item.Get("msg").String()); msg != "" {
				messages = append(messages, msg)
			}
		}
		if len(messages) > 0 {
			return strings.Join(messages, "; "), true
		}
		return detail.Raw, true
	default:
		return detail.Raw, true
	}
}

func statusMessage(operation string, o Outcome) string {
	switch o.Status {
	case http.StatusBadRequest:
		return messageBadRequest
	case http.StatusUnauthorized:
		return messageUnauthorized
	case http.StatusTooManyRequests:
		return messageQuotaExceeded
	case http.StatusInternalServerError:
		reason := ""
		if o.BodyKind == BodyJSON {
			reason = strings.TrimSpace(gjson.GetBytes(o.Body, "message").String())
		}
		if reason == "" {
			reason = o.StatusText
		}
		if reason == "" {
			reason = http.StatusText(http.StatusInternalServerError)
		}
		return fmt.Sprintf("Server error: %s", reason)
	default:
		return fmt.Sprintf("Error %s. Please try again.", operation)
	}
}

func isHTML(contentType, text string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	lower := strings.ToLower(text)
	return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
}

func stripHTML(text string) string {
	clean := html.UnescapeString(htmlStripper.Sanitize(text))
	return strings.Join(strings.Fields(clean), " ")
}
