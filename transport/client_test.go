package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeadSHA = "deadbeefcafe0000000000000000000000000000"
const sampleMasterSHA = sampleHeadSHA

func refAdvertisementBody() string {
	b := new(strings.Builder)
	b.WriteString(pktLine("# service=git-upload-pack\n"))
	b.WriteString("0000")
	b.WriteString(pktLine(sampleHeadSHA + " HEAD\x00 side-band-64k\n"))
	b.WriteString(pktLine(sampleMasterSHA + " refs/heads/master\n"))
	b.WriteString("0000")
	return b.String()
}

func pktLine(s string) string {
	return hex4(len(s)+4) + s
}

func hex4(n int) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 4)
	for i := 3; i >= 0; i-- {
		out[i] = digits[n&0xf]
		n >>= 4
	}
	return string(out)
}

func TestDiscoverReferences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repo.git/info/refs", r.URL.Path)
		assert.Equal(t, "service=git-upload-pack", r.URL.RawQuery)
		_, _ = w.Write([]byte(refAdvertisementBody()))
	}))
	defer srv.Close()

	c := transport.NewClient(srv.URL + "/repo")
	ad, err := c.DiscoverReferences(context.Background())
	require.NoError(t, err)

	head, err := ginternals.NewOidFromStr(sampleHeadSHA)
	require.NoError(t, err)
	assert.Equal(t, head, ad.HeadSHA)
	assert.Equal(t, head, ad.Refs["refs/heads/master"])
	assert.Equal(t, "refs/heads/master", ad.HeadRef)
	assert.Contains(t, ad.Capabilities, "side-band-64k")
}

func TestUploadPack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repo.git/git-upload-pack", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "want "+sampleHeadSHA)
		assert.Contains(t, string(body), "done")

		w.Header().Set("Content-Type", "application/x-git-upload-pack-result")
		_, _ = w.Write([]byte(pktLine("NAK\n") + "PACK-BYTES"))
	}))
	defer srv.Close()

	c := transport.NewClient(srv.URL + "/repo")
	head, err := ginternals.NewOidFromStr(sampleHeadSHA)
	require.NoError(t, err)

	resp, err := c.UploadPack(context.Background(), head, nil)
	require.NoError(t, err)
	defer resp.Close()

	data, err := io.ReadAll(resp)
	require.NoError(t, err)
	assert.Equal(t, "PACK-BYTES", string(data))
}
