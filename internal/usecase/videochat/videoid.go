package videochat

import "net/url"

// VideoIDFromURL extracts the video id from a watch or short link.
// "/watch" links yield the "v" parameter; any other link yields its path
// without the leading slash. Unparsable input yields "".
func VideoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Path == "/watch" {
		return u.Query().Get("v")
	}
	if len(u.Path) > 0 {
		return u.Path[1:]
	}
	return ""
}
