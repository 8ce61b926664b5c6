// Package netlog normalizes raw browser network events into correlated
// request/response records.
//
// The input is a finite, already-delimited event stream: capture start
// and stop are the browser collaborator's decision, never this package's.
package netlog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Event method names, following the Chrome DevTools Protocol.
const (
	MethodRequestWillBeSent     = "Network.requestWillBeSent"
	MethodResponseReceived      = "Network.responseReceived"
	MethodResponseReceivedExtra = "Network.responseReceivedExtraInfo"
)

// Event is one tagged low-level network event.
type Event struct {
	Method   string           `json:"method"`
	Request  *RequestPayload  `json:"request,omitempty"`
	Response *ResponsePayload `json:"response,omitempty"`
	// Timestamp is seconds since an arbitrary capture epoch.
	Timestamp float64 `json:"timestamp,omitempty"`
}

// RequestPayload carries the request-sent fields.
type RequestPayload struct {
	URL      string            `json:"url"`
	Method   string            `json:"method"`
	Headers  map[string]string `json:"headers,omitempty"`
	PostData string            `json:"postData,omitempty"`
}

// ResponsePayload carries the response-received fields.
type ResponsePayload struct {
	URL     string            `json:"url"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Record is a correlated request/response pair. ResponseStatus zero
// means no response was matched to the request.
type Record struct {
	URL             string            `json:"url"`
	Method          string            `json:"method"`
	RequestHeaders  map[string]string `json:"request_headers,omitempty"`
	RequestBody     string            `json:"request_body,omitempty"`
	ResponseStatus  int               `json:"response_status,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	Timestamp       float64           `json:"timestamp"`
}

// HasResponse reports whether a response was correlated to this record.
func (r *Record) HasResponse() bool {
	return r.ResponseStatus != 0
}

// ContentType returns the response content-type header, checked
// case-insensitively, or the request's when no response was attached.
func (r *Record) ContentType() string {
	if ct := headerLookup(r.ResponseHeaders, "content-type"); ct != "" {
		return ct
	}
	return headerLookup(r.RequestHeaders, "content-type")
}

func headerLookup(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Normalize turns an ordered event stream into correlated records.
//
// A request-sent event opens a new record. A response-received event is
// attached to the first still-open record with the same URL, in insertion
// order; at most one response attaches per request. Responses with no
// open request, extra-info events, and events with missing payloads are
// dropped without aborting the scan.
func Normalize(events []Event) []Record {
	records := make([]Record, 0, len(events))
	responded := make([]bool, 0, len(events))

	for _, ev := range events {
		switch ev.Method {
		case MethodRequestWillBeSent:
			if ev.Request == nil || ev.Request.URL == "" {
				continue
			}
			method := ev.Request.Method
			if method == "" {
				method = "GET"
			}
			records = append(records, Record{
				URL:            ev.Request.URL,
				Method:         method,
				RequestHeaders: ev.Request.Headers,
				RequestBody:    ev.Request.PostData,
				Timestamp:      ev.Timestamp,
			})
			responded = append(responded, false)

		case MethodResponseReceived:
			if ev.Response == nil || ev.Response.URL == "" {
				continue
			}
			// First unmatched record by URL wins, earliest inserted.
			for i := range records {
				if !responded[i] && records[i].URL == ev.Response.URL {
					records[i].ResponseStatus = ev.Response.Status
					records[i].ResponseHeaders = ev.Response.Headers
					responded[i] = true
					break
				}
			}
		}
	}

	return dedupe(records)
}

// dedupe collapses exact (method, URL, status) duplicates, keeping the
// earliest record of each group.
func dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		key := rec.Method + " " + rec.URL + " " + strconv.Itoa(rec.ResponseStatus)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// perfLogEntry is the envelope shape of a Chrome performance-log line.
type perfLogEntry struct {
	Message struct {
		Method string `json:"method"`
		Params struct {
			Request  *RequestPayload  `json:"request"`
			Response *ResponsePayload `json:"response"`
			// Headers may arrive with non-string values; those entries
			// are dropped by the typed decode below.
			Timestamp float64 `json:"timestamp"`
		} `json:"params"`
	} `json:"message"`
}

// ParseEntry decodes one raw performance-log line into an Event. The
// second return is false for corrupt or unrecognized entries; one bad
// line must not lose the rest of the trace.
func ParseEntry(raw string) (Event, bool) {
	var entry perfLogEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Event{}, false
	}
	method := entry.Message.Method
	if method != MethodRequestWillBeSent && method != MethodResponseReceived &&
		method != MethodResponseReceivedExtra {
		return Event{}, false
	}
	return Event{
		Method:    method,
		Request:   entry.Message.Params.Request,
		Response:  entry.Message.Params.Response,
		Timestamp: entry.Message.Params.Timestamp,
	}, true
}

// ParseEntries decodes a batch of raw log lines, skipping corrupt ones.
func ParseEntries(raw []string) []Event {
	events := make([]Event, 0, len(raw))
	for _, line := range raw {
		if ev, ok := ParseEntry(line); ok {
			events = append(events, ev)
		}
	}
	return events
}
