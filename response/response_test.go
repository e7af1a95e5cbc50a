package response

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitResponse(t *testing.T, raw []byte) (string, map[string]string, []byte) {
	t.Helper()
	head, body, found := bytes.Cut(raw, []byte("\r\n\r\n"))
	require.True(t, found, "no header terminator in response")

	lines := strings.Split(string(head), "\r\n")
	headers := make(map[string]string)
	for _, line := range lines[1:] {
		k, v, ok := strings.Cut(line, ": ")
		require.True(t, ok, "bad header line %q", line)
		headers[k] = v
	}
	return lines[0], headers, body
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Error(StatusNotFound).WriteTo(&buf))

	status, headers, body := splitResponse(t, buf.Bytes())
	assert.Equal(t, "HTTP/1.0 404 Not Found", status)
	assert.Equal(t, "text/html", headers["Content-Type"])
	assert.Equal(t, "<h1>404 Not Found</h1>", string(body))
}

func TestError_MethodNotAllowedHasNoBody(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Error(StatusMethodNotAllowed).WriteTo(&buf))

	status, headers, body := splitResponse(t, buf.Bytes())
	assert.Equal(t, "HTTP/1.0 405 Method Not Allowed", status)
	assert.Empty(t, body)
	assert.NotContains(t, headers, "Content-Length")
}

func TestFile_RoundTrip(t *testing.T) {
	// Larger than ChunkSize so the body crosses several chunks.
	content := make([]byte, 3*ChunkSize+17)
	_, err := rand.Read(content)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, content, 0644))

	var buf bytes.Buffer
	require.NoError(t, File(path).WriteTo(&buf))

	status, headers, body := splitResponse(t, buf.Bytes())
	assert.Equal(t, "HTTP/1.0 200 OK", status)
	assert.Equal(t, fmt.Sprintf("%d", len(content)), headers["Content-Length"])
	assert.Equal(t, "application/octet-stream", headers["Content-Type"])
	assert.Equal(t, content, body)
}

func TestFile_ContentType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0644))

	var buf bytes.Buffer
	require.NoError(t, File(path).WriteTo(&buf))

	_, headers, _ := splitResponse(t, buf.Bytes())
	assert.Contains(t, headers["Content-Type"], "text/html")
}

func TestFile_Missing(t *testing.T) {
	res := File(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	var buf bytes.Buffer
	require.NoError(t, Directory(dir, "/").WriteTo(&buf))

	status, headers, body := splitResponse(t, buf.Bytes())
	assert.Equal(t, "HTTP/1.0 200 OK", status)
	assert.Equal(t, "text/html", headers["Content-Type"])

	page := string(body)
	assert.Contains(t, page, "<a href='/a.txt'>a.txt</a>")
	assert.Contains(t, page, "<a href='/sub'>sub</a>")
	assert.Contains(t, page, "5 bytes")
	assert.Contains(t, page, "&lt;DIR&gt;")
	// Root listing has no parent link.
	assert.NotContains(t, page, "Parent Directory")
}

func TestDirectory_ParentLink(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, Directory(dir, "/sub/deeper").WriteTo(&buf))

	page := buf.String()
	assert.Contains(t, page, "Index of /sub/deeper")
	assert.Contains(t, page, "<a href='/sub'>.. (Parent Directory)</a>")
}

func TestDirectory_Vanished(t *testing.T) {
	// The entry existed at resolution time and is gone now: an
	// ordinary race, answered with 404.
	res := Directory(filepath.Join(t.TempDir(), "gone"), "/gone")
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestDirectory_ReadFailure(t *testing.T) {
	// Listing a regular file fails with ENOTDIR, not ENOENT;
	// that is the server's problem, not the client's.
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	res := Directory(path, "/plain.txt")
	assert.Equal(t, StatusInternalServerError, res.Status)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestFile_StreamClosedWhenWriteFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	res := File(path)
	require.NotNil(t, res.stream)
	assert.Error(t, res.WriteTo(failWriter{}))

	// The file handle must be released even though not a single
	// byte reached the client.
	_, err := res.stream.Read(make([]byte, 1))
	assert.Error(t, err, "body stream still open after failed write")
}
