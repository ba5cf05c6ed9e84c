package util

import (
	"fmt"
	"net/http"
)

// Error is a richer error object for failures involving remote services.
// LogMsg is what lands in the log; SimpleMsg is what a user should see.
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
}

// Error implements the error interface, preferring the user-suitable message
func (err Error) Error() string {
	if err.SimpleMsg != "" {
		return err.SimpleMsg
	}
	return err.LogMsg
}

// Log writes the error to the log, with an optional message prefix,
// and returns the error for further handling
func (err Error) Log(context LogContext, prefix string) error {
	message := err.LogMsg
	if prefix != "" {
		message = prefix + " " + message
	}
	if err.URL != "" {
		message += fmt.Sprintf(" url=%v", err.URL)
	}
	if err.HTTPStatus != 0 {
		message += fmt.Sprintf(" status=%v", err.HTTPStatus)
	}
	if err.Response != "" {
		message += "\nresponse: " + err.Response
	}
	writeLog(context, ERROR, message)
	return err
}

// HTTPErr is an error holding the HTTP status code that caused it,
// so handlers can pass remote failures through faithfully
type HTTPErr struct {
	Status  int
	Message string
}

// Error implements the error interface
func (err HTTPErr) Error() string {
	return err.Message
}

// HTTPError writes an error message to the response writer
// and audits the failed request
func HTTPError(r *http.Request, w http.ResponseWriter, context LogContext, message string, status int) {
	LogAudit(context, LogAuditInput{
		Actor:    "anon user",
		Action:   r.Method + " response",
		Actee:    r.URL.String(),
		Message:  message,
		Severity: ALERT,
	})
	http.Error(w, message, status)
}
