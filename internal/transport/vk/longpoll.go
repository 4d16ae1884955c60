package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultWait = 25

// IncomingMessage is one message_new event from the bots long-poll stream.
type IncomingMessage struct {
	FromID int64  `json:"from_id"`
	PeerID int64  `json:"peer_id"`
	Text   string `json:"text"`
}

type pollUpdate struct {
	Type   string `json:"type"`
	Object struct {
		Message IncomingMessage `json:"message"`
	} `json:"object"`
}

type pollResponse struct {
	TS      string       `json:"ts"`
	Updates []pollUpdate `json:"updates"`
	Failed  int          `json:"failed"`
}

// Poller runs the VK Bots Long Poll loop (groups.getLongPollServer + a_check).
// Transient failures are retried here with a short backoff; the handler is
// invoked sequentially, which preserves per-user arrival order.
type Poller struct {
	client  *Client
	groupID int64
	wait    int
	log     *slog.Logger
	// retryDelay between failed polls; shortened in tests
	retryDelay time.Duration
}

func NewPoller(client *Client, groupID int64, wait int, log *slog.Logger) *Poller {
	if wait <= 0 {
		wait = defaultWait
	}
	return &Poller{
		client:     client,
		groupID:    groupID,
		wait:       wait,
		log:        log,
		retryDelay: 5 * time.Second,
	}
}

// Run polls for updates until ctx is done, passing every new message to handle.
func (p *Poller) Run(ctx context.Context, handle func(ctx context.Context, msg IncomingMessage)) error {
	server, err := p.client.GetLongPollServer(ctx, p.groupID)
	if err != nil {
		return fmt.Errorf("vk longpoll: %w", err)
	}
	ts := server.TS

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		resp, err := p.check(ctx, server, ts)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.log.Warn("poll failed, retrying", "err", err)
			if !p.sleep(ctx) {
				return nil
			}
			continue
		}

		switch resp.Failed {
		case 0:
			ts = resp.TS
		case 1:
			// history is outdated, resume from the returned ts
			ts = resp.TS
			continue
		default:
			// key expired or server info invalidated
			server, err = p.client.GetLongPollServer(ctx, p.groupID)
			if err != nil {
				p.log.Warn("refresh longpoll server failed", "err", err)
				if !p.sleep(ctx) {
					return nil
				}
			} else {
				ts = server.TS
			}
			continue
		}

		for _, update := range resp.Updates {
			if update.Type != "message_new" {
				continue
			}
			handle(ctx, update.Object.Message)
		}
	}
}

func (p *Poller) check(ctx context.Context, server LongPollServer, ts string) (pollResponse, error) {
	params := url.Values{}
	params.Set("act", "a_check")
	params.Set("key", server.Key)
	params.Set("ts", ts)
	params.Set("wait", strconv.Itoa(p.wait))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.Server+"?"+params.Encode(), nil)
	if err != nil {
		return pollResponse{}, err
	}
	resp, err := p.client.HTTPClient.Do(req)
	if err != nil {
		return pollResponse{}, err
	}
	defer resp.Body.Close()

	var out pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return pollResponse{}, fmt.Errorf("decode poll response: %w", err)
	}
	return out, nil
}

func (p *Poller) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.retryDelay):
		return true
	}
}
