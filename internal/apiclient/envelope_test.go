package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	PostsCount     int     `json:"postsCount"`
	FollowersCount int     `json:"followersCount"`
	AverageRating  float64 `json:"averageRating"`
}

func TestDecodeSuccessFalseWithError(t *testing.T) {
	_, err := Decode[stats]([]byte(`{"success":false,"error":"X","code":"E42"}`))
	require.ErrorIs(t, err, ErrServer)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "X", apiErr.Message)
	assert.Equal(t, "E42", apiErr.Code)
}

func TestDecodeSuccessFalseFallsBackToMessage(t *testing.T) {
	_, err := Decode[stats]([]byte(`{"success":false,"message":"try later"}`))
	assert.Equal(t, "try later", MessageOf(err))
}

func TestDecodeSuccessFalseGenericMessage(t *testing.T) {
	for _, body := range []string{`{"success":false}`, `{}`, `{"data":{"postsCount":1}}`} {
		_, err := Decode[stats]([]byte(body))
		require.ErrorIs(t, err, ErrServer, body)
		assert.Equal(t, GenericFailure, MessageOf(err))
	}
}

func TestDecodeMissingDataIsMalformed(t *testing.T) {
	for _, body := range []string{`{"success":true}`, `{"success":true,"data":null}`} {
		_, err := Decode[stats]([]byte(body))
		require.ErrorIs(t, err, ErrMalformedResponse, body)
	}
}

func TestDecodeInvalidJSONIsMalformed(t *testing.T) {
	_, err := Decode[stats]([]byte(`<html>`))
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = Decode[stats]([]byte(`{"success":true,"data":"not an object"}`))
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeToleratesMissingNestedFields(t *testing.T) {
	s, err := Decode[stats]([]byte(`{"success":true,"data":{"postsCount":3}}`))
	require.NoError(t, err)
	assert.Equal(t, stats{PostsCount: 3}, s)
}

func TestDecodePagination(t *testing.T) {
	type page struct {
		Items      []string   `json:"items"`
		Pagination Pagination `json:"pagination"`
	}
	p, err := Decode[page]([]byte(`{"success":true,"data":{"items":["a"],"pagination":{"page":2,"limit":10,"total":11,"totalPages":2,"hasPrev":true}}}`))
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 11, TotalPages: 2, HasNext: false, HasPrev: true}, p.Pagination)
}
