package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
)

func testIdentities() []ClientIdentity {
	return []ClientIdentity{
		{Name: "primary", UserAgent: "test-agent-1"},
		{Name: "backup", UserAgent: "test-agent-2"},
		{Name: "last", UserAgent: "test-agent-3"},
	}
}

func TestFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent-1" {
			t.Errorf("User-Agent = %q, 应使用第一个身份", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	f.SetIdentities(testIdentities())

	resp, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("Body = %q, want hello", resp.Body)
	}
}

func TestFetcher_Fetch_IdentityRotationOn403(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 第一个身份被拒绝, 第二个身份放行
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	f.SetIdentities(testIdentities())

	resp, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v, 备用身份应该成功", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("Body = %q, want ok", resp.Body)
	}
	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Errorf("请求次数 = %d, want 2", got)
	}
}

func TestFetcher_Fetch_BlockedAfterExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	f.SetIdentities(testIdentities())

	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("所有身份都被拒绝时应返回错误")
	}

	var blocked *models.BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("错误类型 = %T, want *models.BlockedError", err)
	}
	if blocked.Attempts != len(testIdentities()) {
		t.Errorf("Attempts = %d, want %d", blocked.Attempts, len(testIdentities()))
	}
}

func TestFetcher_Fetch_TransportErrorOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	f.SetIdentities(testIdentities())

	_, err := f.Fetch(context.Background(), server.URL)
	var transport *models.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("错误类型 = %T, want *models.TransportError", err)
	}
	if transport.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", transport.StatusCode)
	}
}

func TestDecodeBody(t *testing.T) {
	plain := []byte("<?xml version=\"1.0\"?><urlset></urlset>")

	var gzipped bytes.Buffer
	gw := gzip.NewWriter(&gzipped)
	gw.Write(plain)
	gw.Close()

	var brotlied bytes.Buffer
	bw := brotli.NewWriter(&brotlied)
	bw.Write(plain)
	bw.Close()

	tests := []struct {
		name     string
		encoding string
		body     []byte
		want     []byte
	}{
		{"无编码原样返回", "", plain, plain},
		{"gzip按声明解压", "gzip", gzipped.Bytes(), plain},
		{"gzip按魔数嗅探解压", "", gzipped.Bytes(), plain},
		{"brotli解压", "br", brotlied.Bytes(), plain},
		{"声明gzip但内容损坏时退回原始内容", "gzip", []byte("not-gzip"), []byte("not-gzip")},
		{"声明br但内容损坏时退回原始内容", "br", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.encoding != "" {
				header.Set("Content-Encoding", tt.encoding)
			}
			got := DecodeBody(header, tt.body)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("DecodeBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
