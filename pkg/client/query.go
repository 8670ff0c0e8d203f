package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// query describes a PostgREST request against one table.
type query struct {
	table  string
	params url.Values
	single bool
}

func (c *Client) from(table string) *query {
	return &query{table: table, params: url.Values{}}
}

func (q *query) sel(columns string) *query {
	q.params.Set("select", columns)
	return q
}

func (q *query) eq(column string, value any) *query {
	q.params.Add(column, "eq."+fmt.Sprint(value))
	return q
}

func (q *query) order(column string, ascending bool) *query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Add("order", column+"."+dir)
	return q
}

// one asks for exactly one row; zero rows fail with CodeNoRows.
func (q *query) one() *query {
	q.single = true
	return q
}

func (q *query) path() string {
	p := "/rest/v1/" + url.PathEscape(q.table)
	if len(q.params) > 0 {
		p += "?" + q.params.Encode()
	}
	return p
}

func (q *query) accept() requestOption {
	if q.single {
		return withHeader("Accept", "application/vnd.pgrst.object+json")
	}
	return withHeader("Accept", "application/json")
}

func (c *Client) selectRows(ctx context.Context, q *query, out any) error {
	return c.get(ctx, q.path(), out, q.accept())
}

// insertRows inserts body and decodes the created rows into out.
func (c *Client) insertRows(ctx context.Context, q *query, body any, out any) error {
	opts := []requestOption{q.accept()}
	if out != nil {
		opts = append(opts, withHeader("Prefer", "return=representation"))
	} else {
		opts = append(opts, withHeader("Prefer", "return=minimal"))
	}
	return c.post(ctx, q.path(), body, out, opts...)
}

// updateRows patches the rows matched by q and decodes them into out.
func (c *Client) updateRows(ctx context.Context, q *query, body any, out any) error {
	opts := []requestOption{q.accept()}
	if out != nil {
		opts = append(opts, withHeader("Prefer", "return=representation"))
	} else {
		opts = append(opts, withHeader("Prefer", "return=minimal"))
	}
	return c.doRequest(ctx, http.MethodPatch, q.path(), body, out, opts...)
}

func (c *Client) deleteRows(ctx context.Context, q *query) error {
	return c.doRequest(ctx, http.MethodDelete, q.path(), nil, nil)
}

// countRows returns the exact number of rows matched by q.
func (c *Client) countRows(ctx context.Context, q *query) (int, error) {
	resp, err := c.send(ctx, http.MethodHead, q.path(), nil, withHeader("Prefer", "count=exact"))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	return parseContentRange(resp.Header.Get("Content-Range"))
}

// parseContentRange extracts the total from "0-9/42" or "*/0".
func parseContentRange(h string) (int, error) {
	i := strings.LastIndexByte(h, '/')
	if i < 0 || i == len(h)-1 {
		return 0, fmt.Errorf("bad content-range %q", h)
	}
	n, err := strconv.Atoi(h[i+1:])
	if err != nil {
		return 0, fmt.Errorf("bad content-range %q: %w", h, err)
	}
	return n, nil
}

// rpc calls a database function.
func (c *Client) rpc(ctx context.Context, fn string, args any, out any) error {
	return c.post(ctx, "/rest/v1/rpc/"+url.PathEscape(fn), args, out)
}
