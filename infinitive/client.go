// Package infinitive talks to the HTTP API of an Infinitive controller (github.com/acd/infinitive)
// attached to a Carrier/Bryant HVAC system.
//
// Only zone 1 is supported. Reads are cached for a short time since HomeKit asks for
// each characteristic separately; every write purges the cache first.
package infinitive

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brutella/hap/log"
)

const zoneConfigPath = "/api/zone/1/config"

// Client is safe for concurrent use
type Client struct {
	url      string
	username string
	password string

	httpClient *http.Client
	timeout    time.Duration
	cache      *responseCache
	metrics    *Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the default client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request; zero leaves the timeout of the http.Client alone.
// The http.Client passed to WithHTTPClient is never modified, the timeout is set on a copy.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newResponseCache(ttl)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New returns a Client for the Infinitive instance at url (e.g. http://10.0.0.5:8080).
// Basic auth is only sent if both username and password are set.
func New(url, username, password string, opts ...Option) *Client {
	c := &Client{
		url:      strings.TrimSuffix(url, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Transport: &http.Transport{MaxIdleConns: 5, IdleConnTimeout: 30 * time.Second},
		},
		cache: newResponseCache(DefaultCacheTTL),
	}

	for _, o := range opts {
		o(c)
	}

	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// URL is the base URL of the Infinitive instance
func (c *Client) URL() string {
	return c.url
}

func (c *Client) authorization() string {
	if c.username == "" || c.password == "" {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.username+":"+c.password))
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+zoneConfigPath, body)
	if err != nil {
		return nil, err
	}
	if auth := c.authorization(); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doRequest returns the status and the full body
func (c *Client) doRequest(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(req.Method, 0, start)
		return nil, nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.observe(req.Method, resp.StatusCode, start)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: reading body: %w", req.Method, req.URL, err)
	}
	return resp, body, nil
}

func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String() + " " + req.Header.Get("Authorization")
}

func statusText(resp *http.Response) string {
	return strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
}

func success(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// FetchState returns the zone config, from cache if it was fetched within the TTL
func (c *Client) FetchState(ctx context.Context) (*State, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	key := cacheKey(req)
	if body, hit := c.cache.get(key); hit {
		c.metrics.cache(true)
		return DecodeState(body)
	}
	c.metrics.cache(false)

	gen := c.cache.gen()
	resp, body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	if !success(resp) {
		return nil, &RemoteReadError{Status: resp.StatusCode, StatusText: statusText(resp)}
	}

	state, err := DecodeState(body)
	if err != nil {
		log.Debug.Printf("bad zone config from %s: %s", c.url, string(body))
		return nil, err
	}

	if !c.cache.put(key, gen, body) {
		log.Debug.Printf("cache purged during fetch, not storing response")
	}
	return state, nil
}

// SetState purges the cache and PUTs the update. It does not wait for the thermostat to apply the
// change; a FetchState right after may still show the old values.
func (c *Client) SetState(ctx context.Context, u Update) error {
	c.cache.InvalidateAll()

	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	log.Debug.Printf("PUT %s: %s", req.URL, string(payload))
	resp, _, err := c.doRequest(req)
	if err != nil {
		return err
	}
	if !success(resp) {
		return &RemoteWriteError{Status: resp.StatusCode, StatusText: statusText(resp)}
	}
	return nil
}
