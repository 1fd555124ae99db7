package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumnName(t *testing.T) {
	testCases := []struct {
		col      int
		expected string
	}{
		{1, "A"},
		{6, "F"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, columnName(test.col))
	}
}

func TestClient(t *testing.T) {
	var appended [][]string
	var updatedRange string
	var updatedValue string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v4/spreadsheets/sheet-id/values/Input", func(w http.ResponseWriter, r *http.Request) {
		// no Content-Type header on purpose: Go sniffs the JSON body as
		// text/plain and the client must still decode it
		json.NewEncoder(w).Encode(map[string]any{
			"range": "Input!A1:F3",
			"values": [][]string{
				{"Case Number", "Case Filed Date", "Status"},
				{"017-355108-24", "7/31/2024", "ready"},
			},
		})
	})
	mux.HandleFunc("POST /v4/spreadsheets/sheet-id/values/Output:append", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Values [][]string `json:"values"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		appended = append(appended, body.Values...)
		w.Write([]byte("{}"))
	})
	mux.HandleFunc("PUT /v4/spreadsheets/sheet-id/values/{cell}", func(w http.ResponseWriter, r *http.Request) {
		updatedRange = r.PathValue("cell")
		var body struct {
			Values [][]string `json:"values"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		updatedValue = body.Values[0][0]
		w.Write([]byte("{}"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Options{
		SpreadsheetId: "sheet-id",
		AccessToken:   "test-token",
		BaseUrl:       server.URL,
	})
	ctx := context.Background()

	rows, err := client.ReadRows(ctx, "Input")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "017-355108-24", rows[1][0])

	err = client.AppendRow(ctx, "Output", []string{"017-355108-24", "7/31/2024"})
	require.NoError(t, err)
	require.Len(t, appended, 1)

	err = client.UpdateCell(ctx, "Input", 2, 6, "scraped")
	require.NoError(t, err)
	require.Equal(t, "Input!F2", updatedRange)
	require.Equal(t, "scraped", updatedValue)
}
