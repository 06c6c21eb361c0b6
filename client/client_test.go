package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type mockDoer struct {
	mock.Mock
}

func (self *mockDoer) Do(req *http.Request) (*http.Response, error) {
	args := self.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1) //nolint:wrapcheck
}

func newMockDoer(t *testing.T) *mockDoer {
	m := new(mockDoer)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type mockLimiter struct {
	mock.Mock
}

func (self *mockLimiter) Wait(ctx context.Context) error {
	return self.Called(ctx).Error(0) //nolint:wrapcheck
}

func newMockLimiter(t *testing.T) *mockLimiter {
	m := new(mockLimiter)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type failReader struct{ err error }

func (self failReader) Read([]byte) (int, error) { return 0, self.err }

func respondWith(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		recorder := httptest.NewRecorder()
		recorder.WriteHeader(status)
		_, _ = recorder.WriteString(body)
		return recorder.Result(), nil
	}
}

func testNew(t *testing.T, opts ...ClientOption) *Client {
	c := New(opts...)
	require.NotNil(t, c)
	return c
}

func TestNew(t *testing.T) {
	c := testNew(t)
	require.IsType(t, new(Client), c)
	assert.NotNil(t, c.client)
	assert.NotNil(t, c.limiter)
	assert.Equal(t, reportBaseURL, c.ReportBaseURL())
}

func TestNew_WithHttpClient(t *testing.T) {
	client := &http.Client{}
	c := testNew(t, WithHttpClient(client))
	assert.Same(t, client, c.client)
}

func TestNew_WithRateLimiter(t *testing.T) {
	l := rate.NewLimiter(limitRate, limitRate)
	c := testNew(t, WithRateLimiter(l))
	assert.Same(t, l, c.limiter)
}

func TestClient_WithUserAgent(t *testing.T) {
	c := testNew(t)
	assert.Same(t, c, c.WithUserAgent("foobar"))
	assert.Equal(t, "foobar", c.ua)
}

func TestClient_WithReportBaseURL(t *testing.T) {
	c := testNew(t)
	assert.Same(t, c, c.WithReportBaseURL("http://localhost"))
	assert.Equal(t, "http://localhost", c.ReportBaseURL())
}

func TestClient_Get(t *testing.T) {
	const ua = "cafef test"
	const url = "https://localhost"
	testErr := errors.New("expected error")

	tests := []struct {
		name    string
		limiter func(t *testing.T) Limiter
		mockDo  func(req *http.Request) (*http.Response, error)
		ctx     context.Context
		wantErr bool
		errorIs error
	}{
		{
			name: "default",
		},
		{
			name: "with limiter",
			limiter: func(t *testing.T) Limiter {
				l := newMockLimiter(t)
				l.On("Wait", mock.Anything).Return(nil)
				return l
			},
		},
		{
			name: "limiter error",
			limiter: func(t *testing.T) Limiter {
				l := newMockLimiter(t)
				l.On("Wait", mock.Anything).Return(testErr)
				return l
			},
			errorIs: testErr,
		},
		{
			name: "Do error",
			mockDo: func(req *http.Request) (*http.Response, error) {
				return nil, testErr
			},
			errorIs: testErr,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := newMockDoer(t)
			opts := []ClientOption{WithHttpClient(doer)}
			if tt.limiter != nil {
				opts = append(opts, WithRateLimiter(tt.limiter(t)))
			}
			c := testNew(t, opts...).WithUserAgent(ua)

			ctx := tt.ctx
			if !tt.wantErr {
				ctx = context.Background()
			}

			switch {
			case tt.mockDo != nil:
				doer.On("Do", mock.Anything).Return(tt.mockDo(nil))
			case tt.errorIs == nil && !tt.wantErr:
				doer.On("Do", mock.MatchedBy(func(req *http.Request) bool {
					return req.URL.String() == url && req.Header.Get("User-Agent") == ua
				})).Return(respondWith(http.StatusOK, "")(nil))
			}

			resp, err := c.Get(ctx, url)
			switch {
			case tt.wantErr:
				require.Error(t, err)
			case tt.errorIs != nil:
				require.ErrorIs(t, err, tt.errorIs)
			default:
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		})
	}
}

func TestClient_GetJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	testErr := errors.New("expected error")

	tests := []struct {
		name        string
		mockDo      func(req *http.Request) (*http.Response, error)
		want        payload
		wantErr     bool
		errorIs     error
		assertError func(t *testing.T, err error)
	}{
		{
			name:   "default",
			mockDo: respondWith(http.StatusOK, `{"name": "foobar"}`),
			want:   payload{Name: "foobar"},
		},
		{
			name: "Get error",
			mockDo: func(req *http.Request) (*http.Response, error) {
				return nil, testErr
			},
			errorIs: testErr,
		},
		{
			name:   "unexpected StatusCode",
			mockDo: respondWith(http.StatusNotFound, ""),
			assertError: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrUnexpectedStatus)
				var statusErr *UnexpectedStatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusNotFound, statusErr.StatusCode())
			},
		},
		{
			name:    "Unmarshal error",
			mockDo:  respondWith(http.StatusOK, "{ foo: bar }"),
			wantErr: true,
		},
		{
			name: "Read error",
			mockDo: func(req *http.Request) (*http.Response, error) {
				resp := httptest.NewRecorder().Result()
				resp.Body = io.NopCloser(failReader{err: testErr})
				return resp, nil
			},
			errorIs: testErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := newMockDoer(t)
			doer.On("Do", mock.Anything).Return(tt.mockDo(nil))

			c := testNew(t, WithHttpClient(doer))
			var got payload
			err := c.GetJSON(context.Background(), "https://localhost", &got)

			switch {
			case tt.assertError != nil:
				tt.assertError(t, err)
			case tt.errorIs != nil:
				require.ErrorIs(t, err, tt.errorIs)
			case tt.wantErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClient_PostJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"query": "q"}`, string(body))
			_, _ = w.Write([]byte(`{"ok": true}`))
		}))
	defer ts.Close()

	c := testNew(t)
	var got struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.PostJSON(context.Background(), ts.URL,
		map[string]string{"query": "q"}, &got))
	assert.True(t, got.OK)

	err := c.PostJSON(context.Background(), ts.URL, func() {}, &got)
	require.Error(t, err)
}
