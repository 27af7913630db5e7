package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
)

// snapshotJS serializes a copy of the document with the body of every
// same-origin iframe inlined in a <div data-captured-iframe="true">. It works
// on a clone, so the live page stays usable for further interaction.
//
// Cross-origin iframes cannot be read; they are left as empty <iframe> tags.
const snapshotJS = `() => {
	const clone = document.documentElement.cloneNode(true);
	const live = document.querySelectorAll('iframe');
	const copies = clone.querySelectorAll('iframe');
	let iframeCount = 0;

	live.forEach(function(iframe, i) {
		const copy = copies[i];
		if (!copy) return;
		try {
			const doc = iframe.contentDocument || (iframe.contentWindow && iframe.contentWindow.document);
			if (!doc || !doc.body) return;

			const container = document.createElement('div');
			container.setAttribute('data-captured-iframe', 'true');
			container.setAttribute('data-iframe-src', iframe.src || '');
			container.setAttribute('data-iframe-id', iframe.id || '');
			container.innerHTML = doc.body.innerHTML;

			copy.parentNode.replaceChild(container, copy);
			iframeCount++;
		} catch(e) {
			// cross-origin
		}
	});

	return JSON.stringify({
		html: clone.outerHTML,
		iframeCount: iframeCount
	});
}`

// snapshotResult holds the parsed JSON response from snapshotJS.
type snapshotResult struct {
	HTML        string `json:"html"`
	IframeCount int    `json:"iframeCount"`
}

// Snapshot returns the rendered HTML of the page, including the content of
// same-origin iframes, so it can be parsed with goquery.
//
// On JS eval failure it falls back to plain page.HTML().
func Snapshot(page *rod.Page) (string, error) {
	html, _, err := SnapshotWithFrames(page)
	return html, err
}

// SnapshotWithFrames is Snapshot that also reports how many iframes were
// inlined.
func SnapshotWithFrames(page *rod.Page) (html string, iframeCount int, err error) {
	res, evalErr := page.Eval(snapshotJS)
	if evalErr != nil {
		// Fallback: return plain HTML if JS eval fails
		html, err = page.HTML()
		if err != nil {
			return "", 0, fmt.Errorf("snapshot eval failed and fallback HTML failed: %w", err)
		}
		return html, 0, nil
	}

	var result snapshotResult
	if err := json.Unmarshal([]byte(res.Value.Str()), &result); err != nil {
		// Fallback: return plain HTML if JSON parse fails
		html, htmlErr := page.HTML()
		if htmlErr != nil {
			return "", 0, fmt.Errorf("snapshot JSON parse failed and fallback HTML failed: %w", htmlErr)
		}
		return html, 0, nil
	}

	return result.HTML, result.IframeCount, nil
}
