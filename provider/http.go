package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pitabwire/util"
)

const httpStatusOKClass = 2

type remoteClient struct {
	baseURI   string
	extension string
	timeout   time.Duration
	client    *http.Client
}

func newRemoteClient(baseURI, extension string, timeout time.Duration) *remoteClient {
	return &remoteClient{
		baseURI:   baseURI,
		extension: extension,
		timeout:   timeout,
		client:    http.DefaultClient,
	}
}

func (r *remoteClient) fetch(ctx context.Context, locale string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	fetchURL, err := url.JoinPath(r.baseURI, FileName(locale, r.extension))
	if err != nil {
		return nil, fmt.Errorf("invalid remote wording uri %q: %w", r.baseURI, err)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Accept", "application/toml,application/octet-stream;q=0.9")

	//nolint:bodyclose // closed by util.CloseAndLogOnError below
	hresp, err := r.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer util.CloseAndLogOnError(ctx, hresp.Body)

	// The remote service advertises a globally disabled wording feature with
	// 501; that halts the whole sync run rather than a single locale.
	if hresp.StatusCode == http.StatusNotImplemented {
		return nil, fmt.Errorf("fetching wording %q: %d %s: %w",
			fetchURL, hresp.StatusCode, hresp.Status, ErrRemoteUnsupported)
	}

	if hresp.StatusCode/100 != httpStatusOKClass {
		return nil, fmt.Errorf("wording fetch %q failed: %d %s", fetchURL, hresp.StatusCode, hresp.Status)
	}

	payload, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading wording fetch response from %q: %w", fetchURL, err)
	}

	return payload, nil
}
