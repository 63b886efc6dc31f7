// Package nxapi implements the switch transport over the NX-API JSON-RPC
// endpoint. Show commands go through the "cli" method, configuration
// blocks through "cli_conf"; the device reports command rejections inside
// the JSON-RPC error object's data.msg field.
package nxapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/fabriclab/sanctl/internal/log"
	"github.com/fabriclab/sanctl/internal/registry"
	"github.com/fabriclab/sanctl/pkg/mds"
)

const (
	methodShow   = "cli"
	methodConfig = "cli_conf"

	defaultTimeout = 30 * time.Second
	retryMax       = 3
)

func init() {
	registry.GetRegistry().RegisterTransport("nxapi", func(opts registry.Options) (mds.Transport, error) {
		return NewClient(opts)
	})
}

// Client talks JSON-RPC to one switch's /ins endpoint.
type Client struct {
	http     *retryablehttp.Client
	url      string
	username string
	password string
	nextID   atomic.Int64
}

var _ mds.Transport = (*Client)(nil)

// NewClient builds a transport for the switch described by opts.
func NewClient(opts registry.Options) (*Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("nxapi: switch address is required")
	}
	scheme := opts.Scheme
	if scheme == "" {
		scheme = "https"
	}
	port := opts.Port
	if port == 0 {
		port = 8443
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout
	if opts.Insecure {
		rc.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		http:     rc,
		url:      scheme + "://" + opts.Addr + ":" + strconv.Itoa(port) + "/ins",
		username: opts.Username,
		password: opts.Password,
	}, nil
}

type rpcParams struct {
	Cmd     string `json:"cmd"`
	Version int    `json:"version"`
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

// Show issues a show command and returns the structured result body.
// A device-side rejection of a show command surfaces as a CLIError.
func (c *Client) Show(ctx context.Context, cmd string) (gjson.Result, error) {
	resp, err := c.call(ctx, methodShow, cmd)
	if err != nil {
		return gjson.Result{}, err
	}
	if e := resp.Get("error"); e.Exists() {
		return gjson.Result{}, &mds.CLIError{Cmd: cmd, Msg: rpcErrorMsg(e)}
	}
	return resp.Get("result.body"), nil
}

// Config submits a configuration command block. The device's rejection
// message, when present, is returned as msg for the caller to classify;
// the error return is reserved for transport and protocol failures.
func (c *Client) Config(ctx context.Context, cmd string) (string, error) {
	resp, err := c.call(ctx, methodConfig, cmd)
	if err != nil {
		return "", err
	}
	e := resp.Get("error")
	if !e.Exists() {
		return "", nil
	}
	if msg := e.Get("data.msg").String(); msg != "" {
		return msg, nil
	}
	return "", fmt.Errorf("nxapi: rpc error %d: %s", e.Get("code").Int(), e.Get("message").String())
}

func rpcErrorMsg(e gjson.Result) string {
	if msg := e.Get("data.msg").String(); msg != "" {
		return msg
	}
	return e.Get("message").String()
}

// call posts one JSON-RPC request and returns the matching response
// object. NX-API answers with a single-element array for single requests
// and a bare object on some releases, so both shapes are accepted.
func (c *Client) call(ctx context.Context, method, cmd string) (gjson.Result, error) {
	payload, err := json.Marshal([]rpcRequest{{
		JSONRPC: "2.0",
		Method:  method,
		Params:  rpcParams{Cmd: cmd, Version: 1},
		ID:      c.nextID.Add(1),
	}})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("nxapi: marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("nxapi: build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json-rpc")
	req.Header.Set("X-Request-ID", reqID)
	req.SetBasicAuth(c.username, c.password)

	log.Debug("NX-API request", "method", method, "cmd", cmd, "request_id", reqID)
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("nxapi: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return gjson.Result{}, fmt.Errorf("nxapi: read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return gjson.Result{}, fmt.Errorf("nxapi: authentication failed for %s", c.url)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("nxapi: unexpected status %d", resp.StatusCode)
	}

	body := gjson.ParseBytes(buf.Bytes())
	if body.IsArray() {
		arr := body.Array()
		if len(arr) == 0 {
			return gjson.Result{}, fmt.Errorf("nxapi: empty rpc response")
		}
		return arr[0], nil
	}
	return body, nil
}
