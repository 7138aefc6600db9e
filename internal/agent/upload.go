// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxUploadSize bounds the in-memory multipart buffer.
const maxUploadSize = 25 * 1024 * 1024

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, `\"`)

// UploadFile attaches a local file to a conversation. The backend
// stores it, extracts text where it can, and may answer with an
// immediate assistant analysis; the result reports both outcomes.
func (c *Client) UploadFile(ctx context.Context, conversationID, path string) (*UploadResult, error) {
	const op = "files.upload"
	if conversationID == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoConversation)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(op, KindUnknown, 0, "", fmt.Errorf("read file: %w", err))
	}
	if len(data) > maxUploadSize {
		return nil, newError(op, KindUnknown, 0, "",
			fmt.Errorf("file %s exceeds upload limit of %d bytes", filepath.Base(path), maxUploadSize))
	}

	body, contentType, err := encodeMultipart(filepath.Base(path), data)
	if err != nil {
		return nil, newError(op, KindUnknown, 0, "", fmt.Errorf("encode upload: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	req, err := c.buildRequest(ctx, op, http.MethodPost,
		c.endpoint("/conversations/"+url.PathEscape(conversationID)+"/upload"), body, contentType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		kind, cause := classifyTransport(ctx, err)
		c.logger.Warn("upload failed",
			zap.String("op", op),
			zap.String("kind", kind.String()),
			zap.Duration("duration", duration),
			zap.Error(cause))
		return nil, newError(op, kind, 0, "", cause)
	}
	defer resp.Body.Close()

	c.logger.Debug("upload",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Int("size", len(data)),
		zap.Duration("duration", duration))

	payload, err := readLimited(resp.Body)
	if err != nil {
		return nil, newError(op, KindRequest, resp.StatusCode, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, mapStatus(op, resp.StatusCode, payload)
	}

	var env uploadEnvelope
	if err := unmarshalEnvelope(op, resp.StatusCode, payload, &env); err != nil {
		return nil, err
	}
	return &UploadResult{
		Status:      env.Message,
		File:        env.File,
		MessageID:   env.MessageID,
		AIMessageID: env.AIMessageID,
	}, nil
}

// encodeMultipart builds the single-field "file" form the upload
// endpoint expects, with a content type inferred from the extension so
// server-side extraction can pick the right parser.
func encodeMultipart(filename string, data []byte) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
