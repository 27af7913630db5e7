package testutil

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// Replayer serves recorded HTTP responses during test execution.
//
// Lookups go from most to least specific: method and full URL, full URL,
// then scheme+host+path. The portal answers a failed login with a POST to
// the same URL that served the form, so the method has to take part in
// matching.
type Replayer struct {
	exactMatches map[string]*HAREntry
	urlMatches   map[string]*HAREntry
	pathMatches  map[string]*HAREntry

	// passthrough allows unmatched requests to go to the network
	passthrough bool

	log logrus.FieldLogger
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// WithPassthrough allows unmatched requests to go to the real network.
// By default, unmatched requests will fail.
func WithPassthrough(enabled bool) ReplayerOption {
	return func(r *Replayer) {
		r.passthrough = enabled
	}
}

// WithLogger logs matched and unmatched requests at debug level.
func WithLogger(logger logrus.FieldLogger) ReplayerOption {
	return func(r *Replayer) {
		if logger != nil {
			r.log = logger
		}
	}
}

// NewReplayer creates a replayer from a HAR log.
func NewReplayer(har *HARLog, opts ...ReplayerOption) *Replayer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Replayer{
		exactMatches: make(map[string]*HAREntry),
		urlMatches:   make(map[string]*HAREntry),
		pathMatches:  make(map[string]*HAREntry),
		log:          discard,
	}

	for _, opt := range opts {
		opt(r)
	}

	// Index entries for fast lookup. The first occurrence wins everywhere.
	for i := range har.Entries {
		entry := &har.Entries[i]
		reqURL := entry.Request.URL

		addOnce(r.exactMatches, methodKey(entry.Request.Method, reqURL), entry)
		addOnce(r.urlMatches, reqURL, entry)
		if pathKey, ok := pathKey(reqURL); ok {
			addOnce(r.pathMatches, pathKey, entry)
		}
	}

	return r
}

// Middleware returns a Rod hijack handler that serves recorded responses.
// Use with router.MustAdd("*", replayer.Middleware()).
func (r *Replayer) Middleware() func(*rod.Hijack) {
	return func(ctx *rod.Hijack) {
		method := ctx.Request.Method()
		reqURL := ctx.Request.URL().String()

		entry, found := r.Lookup(method, reqURL)
		if !found {
			r.log.Debugf("[replayer] no match for: %s %s", method, reqURL)

			if r.passthrough {
				// Let it go to the real network
				_ = ctx.LoadResponse(http.DefaultClient, true)
				return
			}

			r.serveNotFound(ctx, reqURL)
			return
		}

		r.log.Debugf("[replayer] matched: %s %s -> %d", method, reqURL, entry.Response.Status)
		r.serveRecordedResponse(ctx, entry)
	}
}

// Lookup finds the recorded entry for a request, following recorded
// redirects to their final response.
func (r *Replayer) Lookup(method, reqURL string) (*HAREntry, bool) {
	entry, found := r.find(method, reqURL)
	if !found {
		return nil, false
	}
	return r.followRedirects(entry), true
}

func (r *Replayer) find(method, reqURL string) (*HAREntry, bool) {
	if entry, ok := r.exactMatches[methodKey(method, reqURL)]; ok {
		return entry, true
	}
	if entry, ok := r.urlMatches[reqURL]; ok {
		return entry, true
	}
	if key, ok := pathKey(reqURL); ok {
		entry, found := r.pathMatches[key]
		return entry, found
	}
	return nil, false
}

// serveRecordedResponse serves a recorded HAR entry as the response.
func (r *Replayer) serveRecordedResponse(ctx *rod.Hijack, entry *HAREntry) {
	resp := entry.Response

	// Decode body if base64 encoded
	body := []byte(resp.Content.Text)
	if resp.Content.Encoding == "base64" {
		if decoded, err := base64.StdEncoding.DecodeString(resp.Content.Text); err == nil {
			body = decoded
		}
	}

	var protoHeaders []*proto.FetchHeaderEntry
	hasContentType := false
	for _, h := range resp.Headers {
		name := strings.ToLower(h.Name)
		// Skip headers that no longer describe the served body
		if name == "content-encoding" || name == "content-length" || name == "location" {
			continue
		}
		if name == "content-type" {
			hasContentType = true
		}
		protoHeaders = append(protoHeaders, &proto.FetchHeaderEntry{
			Name:  h.Name,
			Value: h.Value,
		})
	}
	if !hasContentType && resp.Content.MimeType != "" {
		protoHeaders = append(protoHeaders, &proto.FetchHeaderEntry{
			Name:  "Content-Type",
			Value: resp.Content.MimeType,
		})
	}

	payload := ctx.Response.Payload()
	payload.ResponseCode = resp.Status
	payload.ResponseHeaders = protoHeaders
	payload.Body = body
}

// followRedirects follows a redirect chain and returns the final entry.
// If the entry is not a redirect or the target is not in the HAR, returns the original entry.
func (r *Replayer) followRedirects(entry *HAREntry) *HAREntry {
	const maxRedirects = 10
	current := entry

	for i := 0; i < maxRedirects; i++ {
		if current.Response.Status < 300 || current.Response.Status >= 400 {
			return current
		}

		var location string
		for _, h := range current.Response.Headers {
			if strings.EqualFold(h.Name, "location") {
				location = h.Value
				break
			}
		}
		if location == "" {
			return current
		}

		r.log.Debugf("[replayer] following redirect: %d -> %s", current.Response.Status, location)

		target, found := r.find(http.MethodGet, location)
		if !found {
			r.log.Debugf("[replayer] redirect target not in HAR: %s", location)
			return current
		}

		current = target
	}

	return current
}

// serveNotFound serves a 404 response for unmatched requests.
func (r *Replayer) serveNotFound(ctx *rod.Hijack, reqURL string) {
	payload := ctx.Response.Payload()
	payload.ResponseCode = http.StatusNotFound
	payload.ResponseHeaders = []*proto.FetchHeaderEntry{
		{Name: "Content-Type", Value: "application/json"},
	}
	payload.Body = []byte(`{"error": "no recording found for URL"}`)

	r.log.Debugf("[replayer] 404 not found: %s", reqURL)
}

// Stats returns statistics about the replayer's index.
func (r *Replayer) Stats() map[string]int {
	return map[string]int{
		"exact_matches": len(r.exactMatches),
		"url_matches":   len(r.urlMatches),
		"path_matches":  len(r.pathMatches),
	}
}

func methodKey(method, reqURL string) string {
	return strings.ToUpper(method) + " " + reqURL
}

func pathKey(reqURL string) (string, bool) {
	parsed, err := url.Parse(reqURL)
	if err != nil {
		return "", false
	}
	return parsed.Scheme + "://" + parsed.Host + parsed.Path, true
}

func addOnce(index map[string]*HAREntry, key string, entry *HAREntry) {
	if _, exists := index[key]; !exists {
		index[key] = entry
	}
}
