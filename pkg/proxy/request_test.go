package proxy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opensign-hq/relay/pkg/upstream"
)

func TestRegimeFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        upstream.ContentRegime
	}{
		{"", upstream.RegimeJSON},
		{"application/json", upstream.RegimeJSON},
		{"application/json; charset=utf-8", upstream.RegimeJSON},
		{"text/plain", upstream.RegimePassthrough},
		{"text/plain;charset=UTF-8", upstream.RegimePassthrough},
		{"TEXT/PLAIN", upstream.RegimePassthrough},
		{"multipart/form-data; boundary=xyz", upstream.RegimeMultipart},
		{"application/x-www-form-urlencoded", upstream.RegimeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := RegimeFor(tt.contentType); got != tt.want {
				t.Errorf("RegimeFor(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestParseRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/proxy/functions/getDocument?x=1", strings.NewReader(`{"docId":"abc"}`))
	r.Header.Set("Content-Type", "application/json")

	req, err := ParseRequest(r, "/functions/getDocument")
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}

	if req.Path != "functions/getDocument" {
		t.Errorf("Path = %q, want functions/getDocument", req.Path)
	}
	if req.RawQuery != "x=1" {
		t.Errorf("RawQuery = %q, want x=1", req.RawQuery)
	}
	if string(req.Body) != `{"docId":"abc"}` {
		t.Errorf("Body = %q", req.Body)
	}
	if req.Regime != upstream.RegimeJSON {
		t.Errorf("Regime = %v, want json", req.Regime)
	}
}

func TestParseRequest_BodyTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/proxy/classes/contracts_Document", strings.NewReader(strings.Repeat("a", 100)))
	r.Body = http.MaxBytesReader(w, r.Body, 10)

	_, err := ParseRequest(r, "classes/contracts_Document")

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("ParseRequest() error = %v, want *RequestError", err)
	}
	if reqErr.Status != http.StatusRequestEntityTooLarge {
		t.Errorf("Status = %d, want 413", reqErr.Status)
	}
}

func TestInboundRequest_Outbound(t *testing.T) {
	creds := http.Header{}
	creds.Set("X-Parse-Application-Id", "opensign")
	creds.Set("X-Parse-Session-Token", "r:abc")

	tests := []struct {
		name            string
		contentType     string
		body            string
		wantContentType string
		wantAuth        bool
	}{
		{
			name:            "json gets auth headers",
			contentType:     "application/json",
			body:            `{}`,
			wantContentType: "application/json",
			wantAuth:        true,
		},
		{
			name:            "unknown type is sent as json",
			contentType:     "application/x-www-form-urlencoded",
			body:            `a=b`,
			wantContentType: "application/json",
			wantAuth:        true,
		},
		{
			name:            "passthrough has no auth headers",
			contentType:     "text/plain",
			body:            `{"_ApplicationId":"opensign","_SessionToken":"r:xyz"}`,
			wantContentType: "text/plain",
			wantAuth:        false,
		},
		{
			name:            "multipart keeps boundary",
			contentType:     "multipart/form-data; boundary=b1",
			body:            "--b1--",
			wantContentType: "multipart/form-data; boundary=b1",
			wantAuth:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/proxy/x", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)
			req, err := ParseRequest(r, "x")
			if err != nil {
				t.Fatalf("ParseRequest() error = %v", err)
			}

			out := req.Outbound(creds)
			if got := out.Header.Get("Content-Type"); got != tt.wantContentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantContentType)
			}
			hasAuth := out.Header.Get("X-Parse-Session-Token") != "" || out.Header.Get("X-Parse-Application-Id") != ""
			if hasAuth != tt.wantAuth {
				t.Errorf("auth headers present = %v, want %v", hasAuth, tt.wantAuth)
			}
			if string(out.Body) != tt.body {
				t.Errorf("Body = %q, want %q", out.Body, tt.body)
			}
		})
	}
}

func TestInboundRequest_OutboundDoesNotShareHeader(t *testing.T) {
	creds := http.Header{"X-Parse-Application-Id": {"opensign"}}
	req := &InboundRequest{Method: http.MethodGet, Path: "health"}

	out := req.Outbound(creds)
	out.Header.Add("X-Parse-Application-Id", "other")

	if len(creds["X-Parse-Application-Id"]) != 1 {
		t.Error("Outbound() aliased the credential header slice")
	}
	if out.Header.Get("Content-Type") != "" {
		t.Error("bodyless request should not carry a content type")
	}
}
