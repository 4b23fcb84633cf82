package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/satbag/cashuwallet/cashu"
	"github.com/satbag/cashuwallet/cashu/nuts/nut01"
	"github.com/satbag/cashuwallet/cashu/nuts/nut03"
	"github.com/satbag/cashuwallet/cashu/nuts/nut04"
	"github.com/satbag/cashuwallet/cashu/nuts/nut05"
	"github.com/satbag/cashuwallet/cashu/nuts/nut07"
	"github.com/satbag/cashuwallet/crypto"
)

// HTTPClient implements MintClient against the endpoint shapes named in
// spec §6: GET /keys, GET /mint?amount=, POST /mint?hash=, POST /split,
// POST /melt, POST /checkfees, POST /check.
type HTTPClient struct {
	MintURL string
	http    *http.Client
}

func NewHTTPClient(mintURL string) *HTTPClient {
	return &HTTPClient{MintURL: mintURL, http: http.DefaultClient}
}

func (c *HTTPClient) GetKeys(ctx context.Context) (*crypto.MintKeySet, error) {
	var res nut01.GetKeysResponse
	if err := c.get(ctx, "/keys", &res); err != nil {
		return nil, err
	}

	return &crypto.MintKeySet{
		Id:      res.Id,
		Unit:    res.Unit,
		Active:  true,
		Keys:    res.Keys,
		MintURL: c.MintURL,
	}, nil
}

func (c *HTTPClient) RequestMint(ctx context.Context, amount uint64) (*nut04.RequestMintResponse, error) {
	var res nut04.RequestMintResponse
	if err := c.get(ctx, fmt.Sprintf("/mint?amount=%d", amount), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Mint(ctx context.Context, outputs cashu.BlindedMessages, hash string) (cashu.BlindedSignatures, error) {
	req := nut04.PostMintRequest{Outputs: outputs}
	var res nut04.PostMintResponse
	if err := c.post(ctx, fmt.Sprintf("/mint?hash=%s", hash), req, &res); err != nil {
		return nil, err
	}
	return res.Promises, nil
}

func (c *HTTPClient) Split(ctx context.Context, req nut03.PostSplitRequest) (*nut03.PostSplitResponse, error) {
	var res nut03.PostSplitResponse
	if err := c.post(ctx, "/split", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Melt(ctx context.Context, req nut05.PostMeltRequest) (*nut05.PostMeltResponse, error) {
	var res nut05.PostMeltResponse
	if err := c.post(ctx, "/melt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) CheckFees(ctx context.Context, pr string) (uint64, error) {
	req := nut05.CheckFeesRequest{PR: pr}
	var res nut05.CheckFeesResponse
	if err := c.post(ctx, "/checkfees", req, &res); err != nil {
		return 0, err
	}
	return res.Fee, nil
}

func (c *HTTPClient) CheckSpent(ctx context.Context, secrets []string) ([]bool, error) {
	req := nut07.PostCheckRequest{Proofs: make([]nut07.CheckSecret, len(secrets))}
	for i, s := range secrets {
		req.Proofs[i] = nut07.CheckSecret{Secret: s}
	}

	var res nut07.PostCheckResponse
	if err := c.post(ctx, "/check", req, &res); err != nil {
		return nil, err
	}
	return res.Spendable, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.MintURL+path, nil)
	if err != nil {
		return &NetworkError{Op: "GET " + path, Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isCancelled(err) {
			return ErrCancelled
		}
		return &NetworkError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	return decodeMintResponse(resp, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.MintURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return &NetworkError{Op: "POST " + path, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isCancelled(err) {
			return ErrCancelled
		}
		return &NetworkError{Op: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	return decodeMintResponse(resp, out)
}

func decodeMintResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "read mint response", Err: err}
	}

	var mintErr cashu.MintError
	if err := json.Unmarshal(body, &mintErr); err == nil && mintErr.Detail != "" {
		return &mintErr
	}
	if resp.StatusCode != http.StatusOK {
		return &cashu.MintError{Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &NetworkError{Op: "decode mint response", Err: err}
	}
	return nil
}
