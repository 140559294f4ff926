package httpserver

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"
)

func FuzzRatingRequestDecode(f *testing.F) {
	f.Add(`{"rating":5,"userId":"alice"}`)
	f.Add(`{"rating":"4.5","userId":42}`)
	f.Add(`{"rating":null,"userId":null}`)
	f.Add(`{"rating":"x"}`)

	f.Fuzz(func(t *testing.T, body string) {
		var req ratingRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return
		}
		if err := validateRatingRequest(req); err != nil {
			return
		}
		if math.IsNaN(req.Rating.Value) || math.IsInf(req.Rating.Value, 0) {
			t.Fatalf("accepted non-finite rating %v", req.Rating.Value)
		}
		if !req.UserID.Set {
			t.Fatalf("accepted request without userId")
		}
	})
}

func FuzzParseArtworkID(f *testing.F) {
	f.Add("1700000000000")
	f.Add("abc")
	f.Add("-1")

	f.Fuzz(func(t *testing.T, raw string) {
		id, err := parseArtworkID(raw)
		if err != nil {
			return
		}
		again, err := parseArtworkID(strconv.FormatInt(id, 10))
		if err != nil || again != id {
			t.Fatalf("id %d did not round trip: %d, %v", id, again, err)
		}
	})
}
