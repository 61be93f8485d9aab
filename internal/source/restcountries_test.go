package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func country(name, region string, borders ...string) string {
	b := "[]"
	if len(borders) > 0 {
		b = "["
		for i, code := range borders {
			if i > 0 {
				b += ","
			}
			b += fmt.Sprintf("%q", code)
		}
		b += "]"
	}
	return fmt.Sprintf(`{"name":{"common":%q},"region":%q,"population":1,"borders":%s}`, name, region, b)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", Fields: []string{"name", "region"}}, nil)
}

func TestFetchAll(t *testing.T) {
	var gotFields string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/all", r.URL.Path)
		gotFields = r.URL.Query().Get("fields")
		fmt.Fprintf(w, "[%s,%s,%s]", country("Germany", "Europe"), country("Brazil", "Americas"), country("Iceland", "Europe"))
	})

	countries, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "name,region", gotFields)
	require.Len(t, countries, 3)
	assert.Equal(t, "Germany", countries[0].Name.Common)
	assert.Equal(t, "Brazil", countries[1].Name.Common)
	assert.Equal(t, "Iceland", countries[2].Name.Common)
}

func TestFetchAll_ParseError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>oops</html>")
	})
	_, err := c.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse), "expected ErrParse, got %v", err)
}

func TestFetchAll_MissingName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"region":"Europe"}]`)
	})
	_, err := c.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrParse)
}

func TestFetchAll_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFetchAll_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: base}, nil)
	_, err := c.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFetchByName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/Brazil", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("fullText"))
		fmt.Fprintf(w, "[%s]", country("Brazil", "Americas", "ARG", "URY"))
	})

	got, err := c.FetchByName(context.Background(), "Brazil")
	require.NoError(t, err)
	assert.Equal(t, "Brazil", got.Name.Common)
	assert.Equal(t, []string{"ARG", "URY"}, got.Borders)
}

func TestFetchByName_EscapesPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/United States", r.URL.Path)
		fmt.Fprintf(w, "[%s]", country("United States", "Americas"))
	})
	got, err := c.FetchByName(context.Background(), "United States")
	require.NoError(t, err)
	assert.Equal(t, "United States", got.Name.Common)
}

func TestFetchByName_PrefersExactMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s,%s]", country("Guinea-Bissau", "Africa"), country("Guinea", "Africa"))
	})
	got, err := c.FetchByName(context.Background(), "Guinea")
	require.NoError(t, err)
	assert.Equal(t, "Guinea", got.Name.Common)
}

func TestFetchByName_Ambiguous(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s,%s]", country("Republic of the Congo", "Africa"), country("DR Congo", "Africa"))
	})
	_, err := c.FetchByName(context.Background(), "Congo")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestFetchByName_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status":404,"message":"Not Found"}`)
	})
	_, err := c.FetchByName(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchByName_EmptyArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})
	_, err := c.FetchByName(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchByCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alpha/ARG", r.URL.Path)
		fmt.Fprintf(w, "[%s]", country("Argentina", "Americas"))
	})
	got, err := c.FetchByCode(context.Background(), "ARG")
	require.NoError(t, err)
	assert.Equal(t, "Argentina", got.Name.Common)
}

func TestFetchByCode_SingleObjectBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, country("Uruguay", "Americas"))
	})
	got, err := c.FetchByCode(context.Background(), "URY")
	require.NoError(t, err)
	assert.Equal(t, "Uruguay", got.Name.Common)
}

func TestNoCaching(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, "[%s]", country("Argentina", "Americas"))
	})
	for i := 0; i < 3; i++ {
		_, err := c.FetchByCode(context.Background(), "ARG")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestCanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchAll(ctx)
	assert.ErrorIs(t, err, ErrTransport)
}
