package mirror

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
)

const maxEventBytes = 16 << 20

// snapshot is the payload of a "snapshot" event and of GET document.
type snapshot struct {
	Exists   bool            `json:"exists"`
	Version  int64           `json:"version"`
	Document json.RawMessage `json:"document"`
}

func (s snapshot) appData() (*domain.AppData, error) {
	if !s.Exists {
		return nil, nil
	}
	var data domain.AppData
	if err := json.Unmarshal(s.Document, &data); err != nil {
		return nil, fmt.Errorf("decoding remote document: %w", err)
	}
	data = data.Normalize()
	return &data, nil
}

type event struct {
	name string
	data string
}

// Subscribe opens the user's event stream. The first reply is checked
// synchronously so auth failures surface as the returned error. After that,
// every snapshot is delivered to onChange from a background goroutine
// (nil when the user has no document) and stream failures go to onError
// before the client reconnects with backoff. The returned func stops it all.
func (c *Client) Subscribe(ctx context.Context, userID string, onChange func(*domain.AppData), onError func(error)) (func(), error) {
	token := c.currentToken()
	if token == "" {
		return nil, ErrNotSignedIn
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	body, err := c.openStream(streamCtx, userID, token)
	if err != nil {
		cancel()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.consume(streamCtx, userID, token, body, onChange, onError)
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (c *Client) openStream(ctx context.Context, userID, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+documentPath(userID)+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, statusError(resp.StatusCode, raw)
	}
	return resp.Body, nil
}

func (c *Client) consume(ctx context.Context, userID, token string, body io.ReadCloser, onChange func(*domain.AppData), onError func(error)) {
	backoff := c.retryMin
	for {
		delivered, err := readEvents(body, func(ev event) error {
			if ev.name != "snapshot" {
				return nil
			}
			var snap snapshot
			if err := json.Unmarshal([]byte(ev.data), &snap); err != nil {
				return fmt.Errorf("decoding snapshot event: %w", err)
			}
			doc, err := snap.appData()
			if err != nil {
				return err
			}
			onChange(doc)
			return nil
		})
		body.Close()
		if ctx.Err() != nil {
			return
		}
		if delivered {
			backoff = c.retryMin
		}
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		c.logger.Warn("mirror stream interrupted", "user_id", userID, "error", err)
		onError(err)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, c.retryMax)

			body, err = c.openStream(ctx, userID, token)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
				c.logger.Error("mirror subscription rejected", "user_id", userID, "status", statusErr.StatusCode)
				onError(err)
				return
			}
			c.logger.Debug("mirror reconnect failed", "user_id", userID, "error", err)
		}
		c.logger.Info("mirror stream reconnected", "user_id", userID)
	}
}

// readEvents parses a text/event-stream body and hands each complete event
// to fn. It reports whether any event was handled.
func readEvents(r io.Reader, fn func(event) error) (bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventBytes)

	delivered := false
	var (
		cur  event
		data []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if cur.name != "" || len(data) > 0 {
				cur.data = strings.Join(data, "\n")
				if cur.name == "" {
					cur.name = "message"
				}
				if err := fn(cur); err != nil {
					return delivered, err
				}
				delivered = true
			}
			cur, data = event{}, nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			cur.name = value
		case "data":
			data = append(data, value)
		}
	}
	return delivered, scanner.Err()
}
