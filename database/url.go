package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL points baseURL at databaseName. sslmode=disable is added
// unless the URL already sets an sslmode. An empty name returns baseURL untouched.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	u.Path = "/" + strings.Trim(databaseName, "/")

	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()

	return u.String()
}
