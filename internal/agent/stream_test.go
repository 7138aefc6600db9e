// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

// sseHandler writes the given lines as an SSE response.
func sseHandler(t *testing.T, lines ...string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accept := r.Header.Get("Accept"); accept != "text/event-stream" {
			t.Errorf("Accept = %q, want text/event-stream", accept)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("ResponseWriter is not a Flusher")
		}
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
			flusher.Flush()
		}
	})
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

// TestStreamMessage verifies chunk accumulation, callback ordering,
// and the terminal done event.
func TestStreamMessage(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		`data: {"chunk": "Hello"}`,
		`data: {"chunk": ", "}`,
		`data: {"chunk": "world."}`,
		`data: {"done": true, "message_id": "m99"}`,
	))

	var seen []string
	res, err := client.StreamMessage(context.Background(), "c1", "greet me", SendOptions{},
		func(chunk string) { seen = append(seen, chunk) })
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}

	if res.Message.Content != "Hello, world." {
		t.Errorf("Content = %q, want %q", res.Message.Content, "Hello, world.")
	}
	if res.Message.ID != "m99" {
		t.Errorf("ID = %q, want m99", res.Message.ID)
	}
	if res.Message.Role != RoleAssistant {
		t.Errorf("Role = %q, want assistant", res.Message.Role)
	}
	if res.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", res.Chunks)
	}
	if got := strings.Join(seen, "|"); got != "Hello|, |world." {
		t.Errorf("Callback order = %q", got)
	}
}

// TestStreamMessageRequestShape verifies the streaming send sets the
// stream flag on the same endpoint as the plain send.
func TestStreamMessageRequestShape(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/foundry-agent/conversations/c1/messages" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"stream":true`) {
			t.Errorf("Request body missing stream flag: %s", body)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"done\": true, \"message_id\": \"m1\"}\n\n")
	}))

	if _, err := client.StreamMessage(context.Background(), "c1", "hi", SendOptions{}, nil); err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
}

// TestStreamMessageError verifies an error event surfaces as an
// application error while preserving the partial reply.
func TestStreamMessageError(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		`data: {"chunk": "Partial "}`,
		`data: {"chunk": "answer"}`,
		`data: {"error": "model overloaded"}`,
	))

	res, err := client.StreamMessage(context.Background(), "c1", "question", SendOptions{}, nil)
	if err == nil {
		t.Fatal("Expected error from error event")
	}
	if KindOf(err) != KindApplication {
		t.Errorf("Kind = %v, want KindApplication", KindOf(err))
	}

	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("Error is not *Error: %T", err)
	}
	if ae.Detail != "model overloaded" {
		t.Errorf("Detail = %q", ae.Detail)
	}
	if res == nil || res.Message.Content != "Partial answer" {
		t.Errorf("Partial content not preserved: %+v", res)
	}
}

// TestStreamMessageTruncated verifies a stream that closes without a
// terminal event reports a network failure with the partial reply.
func TestStreamMessageTruncated(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		`data: {"chunk": "Half an "}`,
		`data: {"chunk": "answer"}`,
	))

	res, err := client.StreamMessage(context.Background(), "c1", "question", SendOptions{}, nil)
	if err == nil {
		t.Fatal("Expected error from truncated stream")
	}
	if KindOf(err) != KindNetwork {
		t.Errorf("Kind = %v, want KindNetwork", KindOf(err))
	}
	if res == nil || res.Message.Content != "Half an answer" {
		t.Errorf("Partial content not preserved: %+v", res)
	}
}

// TestStreamMessageAuthRejected verifies a 401 on stream start maps
// through the normal status taxonomy.
func TestStreamMessageAuthRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "Unauthorized"}`)
	}))

	_, err := client.StreamMessage(context.Background(), "c1", "hi", SendOptions{}, nil)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, ErrAuthRequired) {
		t.Errorf("errors.Is(err, ErrAuthRequired) = false, err = %v", err)
	}
}

// TestStreamMessageSkipsNoise verifies comment lines, event names, and
// unparseable payloads do not derail the stream.
func TestStreamMessageSkipsNoise(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		`: keepalive`,
		`event: message`,
		`data: not json at all`,
		`data: {"chunk": "ok"}`,
		`data: {"done": true, "message_id": "m5"}`,
	))

	res, err := client.StreamMessage(context.Background(), "c1", "hi", SendOptions{}, nil)
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
	if res.Message.Content != "ok" {
		t.Errorf("Content = %q, want ok", res.Message.Content)
	}
	if res.Chunks != 1 {
		t.Errorf("Chunks = %d, want 1", res.Chunks)
	}
}

// =============================================================================
// SSE READER TESTS
// =============================================================================

// TestSSEReaderMultiLineData verifies multi-line data fields join with
// newlines per SSE framing.
func TestSSEReaderMultiLineData(t *testing.T) {
	input := "data: line one\ndata: line two\n\ndata: second event\n\n"
	reader := newSSEReader(strings.NewReader(input))

	first, err := reader.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if string(first) != "line one\nline two" {
		t.Errorf("First event = %q", first)
	}

	second, err := reader.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if string(second) != "second event" {
		t.Errorf("Second event = %q", second)
	}

	if _, err := reader.next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF at end of stream, got %v", err)
	}
}

// TestSSEReaderCRLF verifies carriage returns are stripped.
func TestSSEReaderCRLF(t *testing.T) {
	reader := newSSEReader(strings.NewReader("data: payload\r\n\r\n"))
	event, err := reader.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if string(event) != "payload" {
		t.Errorf("Event = %q, want payload", event)
	}
}

// TestSSEReaderEventSizeCap verifies oversized events error instead of
// growing without bound.
func TestSSEReaderEventSizeCap(t *testing.T) {
	huge := "data: " + strings.Repeat("x", maxStreamEventSize+1) + "\n\n"
	reader := newSSEReader(strings.NewReader(huge))
	if _, err := reader.next(); err == nil {
		t.Fatal("Expected error for oversized event")
	}
}

// TestSSEReaderFinalEventWithoutBlankLine verifies an event terminated
// by EOF instead of a blank line is still delivered.
func TestSSEReaderFinalEventWithoutBlankLine(t *testing.T) {
	reader := newSSEReader(strings.NewReader("data: tail\n"))
	event, err := reader.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if string(event) != "tail" {
		t.Errorf("Event = %q, want tail", event)
	}
}
