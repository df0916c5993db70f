package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewMockForTests returns a Store backed by an in-memory fake HTTP
// transport. Only the operations core.Store needs are implemented.
func NewMockForTests() *Store {
	rt := &mockRoundTripper{state: map[string]mockObj{}}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &Store{client: client, bucket: "mock-bucket"}
}

type mockRoundTripper struct{ state map[string]mockObj }

type mockObj struct {
	body        []byte
	contentType string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		return m.list(req.URL.Query().Get("prefix")), nil
	}
	switch req.Method {
	case http.MethodHead:
		if obj, ok := m.state[key]; ok {
			return resp(http.StatusOK, nil, http.Header{
				"Content-Length": {strconv.Itoa(len(obj.body))},
				"Content-Type":   {obj.contentType},
				"ETag":           {`"etag"`},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}), nil
		}
		return resp(http.StatusNotFound, nil, http.Header{}), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeAWSChunked(body); ok {
			body = dec
		}
		m.state[key] = mockObj{body: body, contentType: req.Header.Get("Content-Type")}
		return resp(http.StatusOK, nil, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodGet:
		if obj, ok := m.state[key]; ok {
			return resp(http.StatusOK, obj.body, http.Header{
				"Content-Length": {strconv.Itoa(len(obj.body))},
				"Content-Type":   {obj.contentType},
				"ETag":           {`"etag"`},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}), nil
		}
		return resp(http.StatusNotFound, nil, http.Header{}), nil
	case http.MethodDelete:
		delete(m.state, key)
		return resp(http.StatusNoContent, nil, http.Header{}), nil
	}
	return resp(http.StatusNotImplemented, nil, http.Header{}), nil
}

func (m *mockRoundTripper) list(prefix string) *http.Response {
	var keys []string
	for k := range m.state {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(m.state[k].body))
	}
	b.WriteString("</ListBucketResult>")
	return resp(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

func resp(status int, body []byte, h http.Header) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: h}
}

// decodeAWSChunked unwraps aws-chunked request bodies: hex-size headers
// (with or without a chunk signature), each followed by raw bytes and CRLF,
// terminated by a zero chunk. Trailer checksums after the zero chunk are
// ignored.
func decodeAWSChunked(body []byte) ([]byte, bool) {
	var out []byte
	rest := body
	decoded := false
	for {
		nl := bytes.Index(rest, []byte("\r\n"))
		if nl < 0 {
			return nil, false
		}
		sizeHex := string(rest[:nl])
		if i := strings.Index(sizeHex, ";"); i >= 0 {
			sizeHex = sizeHex[:i]
		}
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil || sizeHex == "" {
			return nil, false
		}
		rest = rest[nl+2:]
		if size == 0 {
			return out, decoded
		}
		if int64(len(rest)) < size {
			return nil, false
		}
		out = append(out, rest[:size]...)
		rest = bytes.TrimPrefix(rest[size:], []byte("\r\n"))
		decoded = true
	}
}
