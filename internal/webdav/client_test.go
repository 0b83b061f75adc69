package webdav

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/halvard/ansuz/internal/apperr"
)

// fakeDAV records requests and simulates a minimal WebDAV directory.
type fakeDAV struct {
	dirExists bool
	putStatus int

	requests []string // "METHOD path"
	lastAuth string
	lastCT   string
	lastBody []byte
}

func (f *fakeDAV) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.lastAuth = r.Header.Get("Authorization")
		switch r.Method {
		case "PROPFIND":
			if f.dirExists {
				w.WriteHeader(http.StatusMultiStatus)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case "MKCOL":
			f.dirExists = true
			w.WriteHeader(http.StatusCreated)
		case http.MethodPut:
			f.lastCT = r.Header.Get("Content-Type")
			f.lastBody, _ = io.ReadAll(r.Body)
			status := f.putStatus
			if status == 0 {
				status = http.StatusCreated
			}
			if status >= 400 {
				http.Error(w, strings.Repeat("boom ", 100), status)
				return
			}
			w.WriteHeader(status)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func testClient(t *testing.T, dav *fakeDAV) *Client {
	t.Helper()
	srv := httptest.NewServer(dav.handler())
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:      srv.URL,
		Username:     "alice",
		Password:     "secret",
		Path:         "/images",
		PublicPrefix: "https://cdn.x/images/",
	}, nil)
}

func TestUpload_ExistingDirectory(t *testing.T) {
	dav := &fakeDAV{dirExists: true}
	c := testClient(t, dav)

	url, err := c.Upload(context.Background(), []byte("img-bytes"), "cat.png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn.x/images/cat.png" {
		t.Errorf("url = %q (prefix trailing slash must be stripped)", url)
	}
	if want := []string{"PROPFIND /images", "PUT /images/cat.png"}; len(dav.requests) != 2 ||
		dav.requests[0] != want[0] || dav.requests[1] != want[1] {
		t.Errorf("requests = %v, want %v", dav.requests, want)
	}
	if string(dav.lastBody) != "img-bytes" {
		t.Errorf("body = %q", dav.lastBody)
	}
	if dav.lastCT != "application/octet-stream" {
		t.Errorf("content-type = %q", dav.lastCT)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:secret"))
	if dav.lastAuth != wantAuth {
		t.Errorf("auth = %q, want %q", dav.lastAuth, wantAuth)
	}
}

func TestUpload_CreatesMissingDirectory(t *testing.T) {
	dav := &fakeDAV{dirExists: false}
	c := testClient(t, dav)

	if _, err := c.Upload(context.Background(), []byte("x"), "a.jpg"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := []string{"PROPFIND /images", "MKCOL /images", "PUT /images/a.jpg"}
	if len(dav.requests) != 3 {
		t.Fatalf("requests = %v, want %v", dav.requests, want)
	}
	for i := range want {
		if dav.requests[i] != want[i] {
			t.Errorf("request[%d] = %q, want %q", i, dav.requests[i], want[i])
		}
	}
}

func TestUpload_AppendsPngExtension(t *testing.T) {
	dav := &fakeDAV{dirExists: true}
	c := testClient(t, dav)

	url, err := c.Upload(context.Background(), []byte("x"), "noext")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn.x/images/noext.png" {
		t.Errorf("url = %q", url)
	}
}

func TestUpload_ServerErrorTruncated(t *testing.T) {
	dav := &fakeDAV{dirExists: true, putStatus: http.StatusInsufficientStorage}
	c := testClient(t, dav)

	_, err := c.Upload(context.Background(), []byte("x"), "a.png")
	if !errors.Is(err, apperr.ErrRemote) {
		t.Fatalf("err = %v, want ErrRemote", err)
	}
	if !strings.Contains(err.Error(), "507") {
		t.Errorf("status missing from error: %v", err)
	}
	if len(err.Error()) > 300 {
		t.Errorf("error body not truncated: %d chars", len(err.Error()))
	}
}

func TestUpload_TransportError(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", Path: "/images",
		PublicPrefix: "https://cdn.x"}, nil)
	_, err := c.Upload(context.Background(), []byte("x"), "a.png")
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

func TestUpload_MissingBaseURL(t *testing.T) {
	c := New(Config{}, nil)
	_, err := c.Upload(context.Background(), []byte("x"), "a.png")
	if !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestTestConnection(t *testing.T) {
	dav := &fakeDAV{dirExists: true}
	if !testClient(t, dav).TestConnection(context.Background()) {
		t.Error("TestConnection = false, want true")
	}
	missing := &fakeDAV{dirExists: false}
	if testClient(t, missing).TestConnection(context.Background()) {
		t.Error("TestConnection = true on 404, want false")
	}
}

func TestHostedPrefixes(t *testing.T) {
	c := New(Config{BaseURL: "https://dav.x", PublicPrefix: "https://cdn.x/images/"}, nil)
	got := c.HostedPrefixes()
	if len(got) != 2 || got[0] != "https://cdn.x/images" || got[1] != "https://dav.x" {
		t.Errorf("HostedPrefixes = %v", got)
	}
}
