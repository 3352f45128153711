// Package transport implements the Smart HTTP protocol used to
// discover references and fetch a packfile from a remote git server.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/transport/pktline"
	"golang.org/x/xerrors"
)

// uploadPackService is the service name the Smart HTTP protocol
// expects for a fetch/clone.
const uploadPackService = "git-upload-pack"

// userAgent is sent on every request; some servers refuse to serve
// clients that don't identify as git.
const userAgent = "git-go/1.0"

// ErrUnexpectedResponse is returned when a server response doesn't
// follow the Smart HTTP protocol this client implements.
var ErrUnexpectedResponse = errors.New("unexpected upload-pack response")

// RefAdvertisement is the result of a ref-discovery request.
type RefAdvertisement struct {
	// HeadSHA is the Oid HEAD points to on the remote. It's the zero
	// Oid for an empty repository.
	HeadSHA ginternals.Oid
	// HeadRef is the full name of the ref HEAD resolves to, picked
	// using the tie-break rule in resolveHeadRef.
	HeadRef string
	// Refs maps every advertised ref name (other than HEAD) to its Oid.
	Refs map[string]ginternals.Oid
	// Capabilities are the space-separated tokens the server
	// advertised alongside the HEAD line.
	Capabilities []string
}

// Client talks to a single remote repository over the Smart HTTP
// transport.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the repository at url. url is
// normalized to always end in ".git/" before any request is made.
func NewClient(url string) *Client {
	return &Client{
		baseURL: normalizeURL(url),
		http:    &http.Client{},
	}
}

// normalizeURL appends ".git" if absent and ensures a trailing slash,
// so endpoint paths can be concatenated directly.
func normalizeURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	if !strings.HasSuffix(url, ".git") {
		url += ".git"
	}
	return url + "/"
}

// DiscoverReferences performs the GET info/refs?service=git-upload-pack
// request and parses the pkt-line ref advertisement it returns.
func (c *Client) DiscoverReferences(ctx context.Context) (*RefAdvertisement, error) {
	url := c.baseURL + "info/refs?service=" + uploadPackService
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.Errorf("could not build ref discovery request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("could not reach %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do with a close error here

	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("unexpected status %d from %s: %w", resp.StatusCode, url, ErrUnexpectedResponse)
	}

	return parseRefAdvertisement(pktline.NewReader(resp.Body))
}

func parseRefAdvertisement(r *pktline.Reader) (*RefAdvertisement, error) {
	frame, err := r.ReadFrame()
	if err != nil {
		return nil, xerrors.Errorf("could not read service announcement: %w", err)
	}
	if frame.Type != pktline.String || !strings.HasPrefix(frame.Str, "# service=") {
		return nil, xerrors.Errorf("unexpected service announcement %q: %w", frame.Str, ErrUnexpectedResponse)
	}

	if frame, err = r.ReadFrame(); err != nil {
		return nil, xerrors.Errorf("could not read post-announcement flush: %w", err)
	}
	if frame.Type != pktline.Flush {
		return nil, xerrors.Errorf("expected flush-pkt after service announcement: %w", ErrUnexpectedResponse)
	}

	ad := &RefAdvertisement{Refs: map[string]ginternals.Oid{}}
	order := []string{}
	first := true
	for {
		frame, err = r.ReadFrame()
		if err != nil {
			return nil, xerrors.Errorf("could not read ref advertisement: %w", err)
		}
		if frame.Type == pktline.Flush {
			break
		}
		if frame.Type != pktline.String {
			return nil, xerrors.Errorf("unexpected binary frame in ref advertisement: %w", ErrUnexpectedResponse)
		}

		line := frame.Str
		if first {
			if idx := strings.IndexByte(line, 0); idx != -1 {
				ad.Capabilities = strings.Fields(line[idx+1:])
				line = line[:idx]
			}
			first = false
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, xerrors.Errorf("malformed ref advertisement line %q: %w", line, ErrUnexpectedResponse)
		}
		oid, err := ginternals.NewOidFromStr(parts[0])
		if err != nil {
			return nil, xerrors.Errorf("invalid sha %q in ref advertisement: %w", parts[0], err)
		}

		if parts[1] == ginternals.Head {
			ad.HeadSHA = oid
			continue
		}
		ad.Refs[parts[1]] = oid
		order = append(order, parts[1])
	}

	ad.HeadRef = resolveHeadRef(ad.HeadSHA, ad.Refs, order)
	return ad, nil
}

// resolveHeadRef picks the ref HEAD should be written as. Per the
// protocol, any ref sharing HEAD's sha is a valid candidate; ties are
// broken by preferring refs/heads/main, then refs/heads/master, then
// the first matching ref in the order the server advertised it.
func resolveHeadRef(headSHA ginternals.Oid, refs map[string]ginternals.Oid, order []string) string {
	if headSHA.IsZero() {
		return ""
	}
	for _, preferred := range []string{
		ginternals.LocalBranchFullName("main"),
		ginternals.LocalBranchFullName(ginternals.Master),
	} {
		if oid, ok := refs[preferred]; ok && oid == headSHA {
			return preferred
		}
	}
	for _, name := range order {
		if refs[name] == headSHA {
			return name
		}
	}
	return ""
}

// PackResponse is the result of an upload-pack request: the raw
// packfile bytes, ready for packfile.Decode, plus the underlying HTTP
// body so the caller can release the connection once it's done
// reading.
type PackResponse struct {
	io.Reader
	body io.Closer
}

// Close releases the HTTP response body backing the pack stream.
func (p *PackResponse) Close() error {
	return p.body.Close()
}

// UploadPack negotiates a fetch of want (and everything it reaches)
// with no haves, which is exactly what a fresh clone needs, and
// returns the resulting packfile stream.
func (c *Client) UploadPack(ctx context.Context, want ginternals.Oid, capabilities []string) (*PackResponse, error) {
	body, err := buildUploadPackRequest(want, capabilities)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + uploadPackService
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, xerrors.Errorf("could not build upload-pack request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-git-upload-pack-request")
	req.Header.Set("Accept", "application/x-git-upload-pack-result")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("could not reach %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck,gosec,errcheck // best effort, we're already returning an error
		return nil, xerrors.Errorf("unexpected status %d from %s: %w", resp.StatusCode, url, ErrUnexpectedResponse)
	}

	r := pktline.NewReader(resp.Body)
	frame, err := r.ReadFrame()
	if err != nil {
		resp.Body.Close() //nolint:errcheck,gosec,errcheck
		return nil, xerrors.Errorf("could not read upload-pack acknowledgement: %w", err)
	}
	if frame.Type != pktline.String || !strings.HasPrefix(frame.Str, "NAK") {
		resp.Body.Close() //nolint:errcheck,gosec,errcheck
		return nil, xerrors.Errorf("unexpected upload-pack acknowledgement %q: %w", frame.Str, ErrUnexpectedResponse)
	}

	return &PackResponse{Reader: r.Raw(), body: resp.Body}, nil
}

func buildUploadPackRequest(want ginternals.Oid, capabilities []string) (io.Reader, error) {
	buf := new(strings.Builder)
	w := pktline.NewWriter(buf)

	wantLine := fmt.Sprintf("want %s", want.String())
	if len(capabilities) > 0 {
		sorted := make([]string, len(capabilities))
		copy(sorted, capabilities)
		sort.Strings(sorted)
		wantLine += " " + strings.Join(sorted, " ")
	}
	if err := w.WriteString(wantLine); err != nil {
		return nil, xerrors.Errorf("could not write want line: %w", err)
	}
	if err := w.WriteFlush(); err != nil {
		return nil, xerrors.Errorf("could not write want flush: %w", err)
	}
	if err := w.WriteString("done"); err != nil {
		return nil, xerrors.Errorf("could not write done line: %w", err)
	}
	return strings.NewReader(buf.String()), nil
}
