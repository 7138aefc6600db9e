// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxStreamEventSize caps a single SSE event payload.
const maxStreamEventSize = 64 * 1024

// streamEvent is one SSE data payload. The backend emits chunk events
// while generating, then exactly one of done or error.
type streamEvent struct {
	Chunk     string `json:"chunk"`
	Done      bool   `json:"done"`
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

// StreamMessage sends one user message and consumes the assistant
// reply incrementally. fn is called once per chunk, in order, from the
// calling goroutine. On error the returned StreamResult still carries
// whatever content arrived, so the caller can render the partial reply
// alongside the failure.
func (c *Client) StreamMessage(ctx context.Context, conversationID, content string, opts SendOptions, fn func(chunk string)) (*StreamResult, error) {
	const op = "messages.stream"
	if conversationID == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoConversation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoContent)
	}

	data, err := json.Marshal(sendMessageRequest{
		Content:            content,
		IncludeUserContext: opts.IncludeContext,
		Stream:             true,
	})
	if err != nil {
		return nil, newError(op, KindUnknown, 0, "", fmt.Errorf("encode request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.streamTimeout)
	defer cancel()

	req, err := c.buildRequest(ctx, op, http.MethodPost,
		c.endpoint("/conversations/"+url.PathEscape(conversationID)+"/messages"),
		bytes.NewReader(data), contentTypeJSON)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.streamClient.Do(req)
	if err != nil {
		kind, cause := classifyTransport(ctx, err)
		c.logger.Warn("stream failed",
			zap.String("op", op),
			zap.String("kind", kind.String()),
			zap.Error(cause))
		return nil, newError(op, kind, 0, "", cause)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, rerr := readLimited(resp.Body)
		if rerr != nil {
			return nil, newError(op, KindRequest, resp.StatusCode, "", rerr)
		}
		return nil, mapStatus(op, resp.StatusCode, payload)
	}

	var reply strings.Builder
	res := &StreamResult{}
	partial := func() Message {
		return Message{
			ConversationID: conversationID,
			Role:           RoleAssistant,
			Content:        reply.String(),
			CreatedAt:      Now(),
		}
	}

	events := newSSEReader(resp.Body)
	for {
		select {
		case <-ctx.Done():
			kind, cause := classifyTransport(ctx, ctx.Err())
			res.Message = partial()
			return res, newError(op, kind, 0, "", cause)
		default:
		}

		payload, err := events.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				res.Message = partial()
				return res, newError(op, KindNetwork, 0, "stream ended before completion", io.ErrUnexpectedEOF)
			}
			kind, cause := classifyTransport(ctx, err)
			res.Message = partial()
			return res, newError(op, kind, 0, "", cause)
		}

		var ev streamEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			// Unparseable events are skipped; the terminal event decides
			// the call's outcome.
			continue
		}

		switch {
		case ev.Error != "":
			res.Message = partial()
			return res, newError(op, KindApplication, resp.StatusCode, ev.Error, nil)
		case ev.Done:
			res.Message = Message{
				ID:             ev.MessageID,
				ConversationID: conversationID,
				Role:           RoleAssistant,
				Content:        reply.String(),
				CreatedAt:      Now(),
			}
			c.logger.Debug("stream complete",
				zap.String("op", op),
				zap.Int("chunks", res.Chunks),
				zap.Duration("duration", time.Since(start)))
			return res, nil
		case ev.Chunk != "":
			reply.WriteString(ev.Chunk)
			res.Chunks++
			if fn != nil {
				fn(ev.Chunk)
			}
		}
	}
}

// =============================================================================
// SSE READER
// =============================================================================

// sseReader yields data payloads from a text/event-stream body. Events
// are blank-line delimited; multi-line data fields are joined with
// newlines per the SSE framing rules.
type sseReader struct {
	r *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{r: bufio.NewReader(r)}
}

// next returns the next event's data payload, or io.EOF when the
// stream closes between events.
func (s *sseReader) next() ([]byte, error) {
	var data [][]byte
	total := 0
	for {
		line, err := s.r.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(data) > 0 {
				return bytes.Join(data, []byte("\n")), nil
			}
			return nil, err
		}
		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 {
			if len(data) > 0 {
				return bytes.Join(data, []byte("\n")), nil
			}
			continue
		}
		if !bytes.HasPrefix(line, []byte("data:")) {
			// id:, event:, retry: and comment lines carry nothing we use.
			continue
		}

		payload := bytes.TrimSpace(line[len("data:"):])
		total += len(payload)
		if total > maxStreamEventSize {
			return nil, fmt.Errorf("stream event exceeds %d bytes", maxStreamEventSize)
		}
		data = append(data, payload)
	}
}
