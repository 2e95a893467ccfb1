package services

import (
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// NewCookieJar returns an in-memory cookie jar with public suffix domain rules.
func NewCookieJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails with a non-nil options struct
		panic(err)
	}
	return jar
}

// SetCookie stores cookie for the base URL in the client's jar.
func (c *Client) SetCookie(cookie *http.Cookie) {
	if cookie == nil {
		return
	}
	c.jar.SetCookies(c.base, []*http.Cookie{cookie})
}

// Cookie returns the named cookie the jar would send to the base URL.
func (c *Client) Cookie(name string) (*http.Cookie, bool) {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == name {
			return ck, true
		}
	}
	return nil, false
}
