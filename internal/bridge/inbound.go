/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bridge

import (
	"encoding/json"
	"log/slog"
)

// Recognized inbound event discriminants.
const (
	EventSaveComplete   = "onSaveComplete"
	EventExportComplete = "onExportComplete"
	EventNativeMessage  = "onNativeMessage"
)

// Message is a validated inbound host notification.
type Message struct {
	Event    string `json:"event"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

func knownEvent(e string) bool {
	switch e {
	case EventSaveComplete, EventExportComplete, EventNativeMessage:
		return true
	}
	return false
}

// DecodeMessage validates a raw host payload. Payloads are untyped at the
// boundary; anything malformed (bad JSON, wrong types, unknown event) is
// converted into a well-formed failure message so downstream code never sees
// a half-populated record. The adapter logs the rejection.
func (a *Adapter) DecodeMessage(payload []byte) Message {
	fail := func(reason string) Message {
		a.log.Warn("malformed host payload", slog.String("reason", reason))
		return Message{Event: EventNativeMessage, Success: false, Message: "malformed host payload: " + reason}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fail("not a JSON object")
	}

	eventRaw, ok := raw["event"]
	if !ok {
		return fail("missing event field")
	}
	var event string
	if err := json.Unmarshal(eventRaw, &event); err != nil {
		return fail("event is not a string")
	}
	if !knownEvent(event) {
		return fail("unknown event " + event)
	}

	msg := Message{Event: event}
	if successRaw, ok := raw["success"]; ok {
		if err := json.Unmarshal(successRaw, &msg.Success); err != nil {
			return fail("success is not a boolean")
		}
	} else {
		return fail("missing success field")
	}
	if v, ok := raw["message"]; ok {
		if err := json.Unmarshal(v, &msg.Message); err != nil {
			return fail("message is not a string")
		}
	}
	if v, ok := raw["fileName"]; ok {
		if err := json.Unmarshal(v, &msg.FileName); err != nil {
			return fail("fileName is not a string")
		}
	}
	return msg
}
