package crypto

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSpotPrice_ParsesResponse(t *testing.T) {
	var capturedPath, capturedConvert string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedConvert = r.URL.Query().Get("convert")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {"1027": {"id": 1027, "name": "Ethereum", "symbol": "ETH",
				"quotes": {"USD": {"price": 3512.44, "volume_24h": 1}}}},
			"metadata": {"timestamp": 1711670340, "num_cryptocurrencies": 1, "error": null}
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	price, err := client.GetSpotPrice(context.Background(), "Ethereum")
	require.NoError(t, err)

	assert.Equal(t, "/ticker/Ethereum/", capturedPath)
	assert.Equal(t, "USD", capturedConvert)
	assert.Equal(t, 3512.44, price)
}

func TestGetSpotPrice_MetadataError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {}, "metadata": {"error": "Specified currency not found"}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetSpotPrice(context.Background(), "Dogecoinz")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "not found")
}

func TestGetSpotPrice_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetSpotPrice(context.Background(), "Bitcoin")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestGetSpotPrice_MissingUSDQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"1": {"name": "Bitcoin", "quotes": {"EUR": {"price": 60000}}}}, "metadata": {}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetSpotPrice(context.Background(), "Bitcoin")
	assert.ErrorContains(t, err, "no USD price")
}
