// Copyright 2025, the NDVI Explorer authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"fmt"
	"log"
)

// Severity is an RFC 5424 severity classification
type Severity int

// RFC 5424 severities used by this application
const (
	FATAL  Severity = 2
	ERROR  Severity = 3
	ALERT  Severity = 4
	NOTICE Severity = 5
	INFO   Severity = 6
	DEBUG  Severity = 7
)

// LogContext is the context for a log message
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a minimal LogContext for operations that have
// no richer context of their own
type BasicLogContext struct {
	sessionID string
}

// AppName returns the name of the application
func (c *BasicLogContext) AppName() string {
	return "ndvi-explorer"
}

// SessionID returns a Session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// LogAuditInput is the set of inputs for an audit log message
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

func writeLog(context LogContext, severity Severity, message string) {
	log.Printf("[%s] <%d> session=%s %s", context.AppName(), severity, context.SessionID(), message)
}

// LogInfo logs an informational message
func LogInfo(context LogContext, message string) {
	writeLog(context, INFO, message)
}

// LogAlert logs a message that somebody should look at eventually
func LogAlert(context LogContext, message string) {
	writeLog(context, ALERT, message)
}

// LogSimpleErr logs an error message and returns an error object
// containing both the log message and a user-suitable one
func LogSimpleErr(context LogContext, message string, err error) error {
	result := Error{SimpleMsg: message, LogMsg: message}
	if err != nil {
		result.LogMsg = fmt.Sprintf("%v %v", message, err.Error())
	}
	return result.Log(context, "")
}

// LogAudit logs an audit message, recording who did what to whom
func LogAudit(context LogContext, input LogAuditInput) {
	writeLog(context, input.Severity, fmt.Sprintf("audit actor=%q action=%q actee=%q %s", input.Actor, input.Action, input.Actee, input.Message))
}
