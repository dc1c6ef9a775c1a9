package app

import "net/url"

// basePath is the path component of the public base URL, "/" when empty.
func basePath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
