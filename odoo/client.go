package odoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"
)

const (
	commonEndpoint = "/xmlrpc/2/common"
	objectEndpoint = "/xmlrpc/2/object"
)

type Credentials struct {
	URL      string
	Database string
	Username string
	Password string
}

// Session is an authenticated Odoo connection. It is built once per run by
// Authenticate and handed to the Fetcher.
type Session struct {
	baseURL  string
	database string
	password string
	uid      int64
	http     http.RoundTripper
}

// Authenticate logs in through the common endpoint. A nil transport uses
// http.DefaultTransport with a 30s response header timeout.
func Authenticate(ctx context.Context, creds Credentials, transport http.RoundTripper) (*Session, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(creds.URL), "/")
	if baseURL == "" {
		return nil, &FetchError{Kind: KindAuthentication, Err: errors.New("odoo url is empty")}
	}
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.ResponseHeaderTimeout = 30 * time.Second
		transport = t
	}
	s := &Session{
		baseURL:  baseURL,
		database: creds.Database,
		password: creds.Password,
		http:     transport,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var reply any
	args := []any{creds.Database, creds.Username, creds.Password, map[string]any{}}
	if err := s.call(commonEndpoint, "authenticate", args, &reply); err != nil {
		return nil, &FetchError{Kind: KindAuthentication, Method: "authenticate", Err: err}
	}
	uid, ok := toInt64(reply)
	if !ok || uid <= 0 {
		return nil, &FetchError{Kind: KindAuthentication, Method: "authenticate", Err: ErrAuthenticationFailed}
	}
	s.uid = uid
	return s, nil
}

func (s *Session) UID() int64 { return s.uid }

// ExecuteKw performs one object.execute_kw call and decodes a list of records.
func (s *Session) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	params := []any{s.database, s.uid, s.password, model, method, args, kwargs}

	var reply any
	if err := s.call(objectEndpoint, "execute_kw", params, &reply); err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, &FetchError{Kind: fe.Kind, Model: model, Method: method, StatusCode: fe.StatusCode, Err: fe.Err}
		}
		return nil, &FetchError{Kind: KindOf(err), Model: model, Method: method, Err: err}
	}
	return decodeRecords(reply, model, method)
}

// call opens a fresh client per request: net/rpc shuts a client down for good
// once a response header fails to read.
func (s *Session) call(endpoint, method string, args []any, reply any) error {
	client, err := xmlrpc.NewClient(s.baseURL+endpoint, statusTransport{base: s.http})
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Call(method, args, reply)
	if err == nil {
		return nil
	}
	var fault xmlrpc.FaultError
	if errors.As(err, &fault) {
		return &FetchError{Kind: KindRemoteProtocol, Err: fmt.Errorf("fault %d: %s", fault.Code, fault.String)}
	}
	return err
}

func decodeRecords(reply any, model, method string) ([]Record, error) {
	if reply == nil {
		return nil, nil
	}
	list, ok := reply.([]any)
	if !ok {
		return nil, &FetchError{Kind: KindRemoteProtocol, Model: model, Method: method, Err: fmt.Errorf("unexpected reply type %T", reply)}
	}
	records := make([]Record, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &FetchError{Kind: KindRemoteProtocol, Model: model, Method: method, Err: fmt.Errorf("unexpected record type %T", item)}
		}
		records = append(records, Record(m))
	}
	return records, nil
}

// statusTransport surfaces HTTP 429 as a typed error before the XML-RPC codec
// sees the body.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, &FetchError{Kind: KindRemoteProtocol, Err: err}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, &FetchError{Kind: KindRateLimited, StatusCode: resp.StatusCode, Err: ErrRateLimited}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &FetchError{Kind: KindRemoteProtocol, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return resp, nil
}
