package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL    = "https://api.vk.com/method"
	defaultAPIVersion = "5.131"
)

// APIError is an error object returned by the VK API itself.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

// Client is a minimal VK Bots API client covering what the relay needs:
// sending messages with keyboards and obtaining a long-poll server.
// BaseURL and HTTPClient are overridable for tests.
type Client struct {
	Token      string
	Version    string
	BaseURL    string
	HTTPClient *http.Client

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewClient(token, version string) *Client {
	if version == "" {
		version = defaultAPIVersion
	}
	return &Client{
		Token:      token,
		Version:    version,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LongPollServer is the connection info returned by groups.getLongPollServer.
type LongPollServer struct {
	Key    string `json:"key"`
	Server string `json:"server"`
	TS     string `json:"ts"`
}

func (c *Client) GetLongPollServer(ctx context.Context, groupID int64) (LongPollServer, error) {
	params := url.Values{}
	params.Set("group_id", strconv.FormatInt(groupID, 10))

	var server LongPollServer
	if err := c.call(ctx, "groups.getLongPollServer", params, &server); err != nil {
		return LongPollServer{}, err
	}
	return server, nil
}

// SendMessage delivers text to a peer, with an optional keyboard. random_id
// deduplicates retried sends on the VK side.
func (c *Client) SendMessage(ctx context.Context, peerID int64, text string, keyboard *Keyboard) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("random_id", strconv.FormatInt(c.randomID(), 10))
	params.Set("message", text)
	if keyboard != nil {
		payload, err := json.Marshal(keyboard)
		if err != nil {
			return fmt.Errorf("vk: encode keyboard: %w", err)
		}
		params.Set("keyboard", string(payload))
	}
	return c.call(ctx, "messages.send", params, nil)
}

func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	params.Set("access_token", c.Token)
	params.Set("v", c.Version)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("vk: %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("vk: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Error    *APIError       `json:"error"`
		Response json.RawMessage `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("vk: %s: decode response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("vk: %s: %w", method, envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Response, out); err != nil {
			return fmt.Errorf("vk: %s: decode payload: %w", method, err)
		}
	}
	return nil
}

func (c *Client) randomID() int64 {
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.rnd.Int63()
}
