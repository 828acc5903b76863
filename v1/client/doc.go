// Package client is a thin HTTP client for the colbert-search API. It is
// used by the command-line tool and by end-to-end tests.
//
//	c := client.New("http://localhost:8000", os.Getenv("API_KEY"))
//	results, err := c.Search(ctx, []string{"what do cats do"}, 5)
//
// Non-2xx responses are returned as *APIError carrying the server's detail
// and, for validation failures, the offending field.
package client
