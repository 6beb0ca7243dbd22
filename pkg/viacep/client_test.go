package viacep

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestLookupResolvesAddress(t *testing.T) {
	var capturedURL string
	body := `{"cep":"01000-000","logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`

	client := NewClient(
		WithBaseURL("http://cep.test"),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			capturedURL = req.URL.String()
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     http.Header{},
			}, nil
		})}),
	)

	result, err := client.Lookup(context.Background(), "01000000")
	require.NoError(t, err)
	require.Equal(t, "http://cep.test/ws/01000000/json/", capturedURL)
	require.Equal(t, "Praça da Sé", result.Street)
	require.Equal(t, "São Paulo", result.City)
	require.Equal(t, "SP", result.Region)
}

func TestLookupUnknownCodeReturnsNil(t *testing.T) {
	// the erro flag shows up as a bool or as a string depending on the
	// directory version; both mean not found
	for _, body := range []string{`{"erro":true}`, `{"erro":"true"}`} {
		client := NewClient(
			WithBaseURL("http://cep.test"),
			WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader(body)),
					Header:     http.Header{},
				}, nil
			})}),
		)

		result, err := client.Lookup(context.Background(), "99999999")
		require.NoError(t, err, body)
		require.Nil(t, result, body)
	}
}

func TestLookupUpstreamFailure(t *testing.T) {
	client := NewClient(
		WithBaseURL("http://cep.test"),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(strings.NewReader("oops")),
				Header:     http.Header{},
			}, nil
		})}),
	)

	_, err := client.Lookup(context.Background(), "01000000")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
