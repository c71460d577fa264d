package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// NetworkController is a thin JSON client for the external services the
// pipeline adapters talk to (model server, device gateway, SIEM sink).
// Controllers are shared across concurrent sessions, so the lazy client
// setup must happen exactly once.
type NetworkController struct {
	BaseUrl string
	Client  *http.Client

	initOnce sync.Once
}

func (network *NetworkController) preRequest() {
	network.initOnce.Do(func() {
		if network.Client == nil {
			network.Client = &http.Client{
				Timeout: 30 * time.Second,
			}
		}
	})
}

func (network *NetworkController) Post(ctx context.Context, path string, headers *map[string]string, body interface{}) (*[]byte, *int, error) {
	network.preRequest()
	var payload io.Reader
	if body != nil {
		marshalled, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		payload = bytes.NewReader(marshalled)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", network.BaseUrl, path), payload)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if headers != nil {
		for key, value := range *headers {
			req.Header.Set(key, value)
		}
	}
	return network.do(req)
}

func (network *NetworkController) Get(ctx context.Context, path string, headers *map[string]string) (*[]byte, *int, error) {
	network.preRequest()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s", network.BaseUrl, path), nil)
	if err != nil {
		return nil, nil, err
	}
	if headers != nil {
		for key, value := range *headers {
			req.Header.Set(key, value)
		}
	}
	return network.do(req)
}

func (network *NetworkController) do(req *http.Request) (*[]byte, *int, error) {
	res, err := network.Client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer res.Body.Close()
	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &res.StatusCode, err
	}
	return &responseBody, &res.StatusCode, nil
}
