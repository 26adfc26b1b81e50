package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

func TestPointIDDeterministic(t *testing.T) {
	a := pointID("games/chess.pdf:2:0")
	b := pointID("games/chess.pdf:2:0")
	if a != b {
		t.Fatalf("point ids differ: %s vs %s", a, b)
	}
	if a == pointID("games/chess.pdf:2:1") {
		t.Fatalf("distinct chunk ids collided")
	}
}

func TestUpsertCreatesCollectionAndWritesPoints(t *testing.T) {
	var ensured, upserted bool
	var gotPoints []point

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/game_rules":
			ensured = true
			var body struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode ensure body: %v", err)
			}
			if body.Vectors.Size != 2 || body.Vectors.Distance != "Cosine" {
				t.Errorf("ensure body = %+v", body)
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/game_rules/points":
			upserted = true
			if r.URL.Query().Get("wait") != "true" {
				t.Errorf("missing wait=true")
			}
			var body struct {
				Points []point `json:"points"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode upsert body: %v", err)
			}
			gotPoints = body.Points
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New(server.URL)
	chunks := []domain.Chunk{{ID: "games/chess.pdf:0:0", Source: "games/chess.pdf", Page: 0, Index: 0, Text: "rules"}}
	err := client.Upsert(context.Background(), "game_rules", chunks, [][]float32{{0.1, 0.2}})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !ensured || !upserted {
		t.Fatalf("ensured=%v upserted=%v", ensured, upserted)
	}
	if len(gotPoints) != 1 {
		t.Fatalf("points = %d", len(gotPoints))
	}
	if gotPoints[0].ID != pointID("games/chess.pdf:0:0") {
		t.Fatalf("point id = %q", gotPoints[0].ID)
	}
	if gotPoints[0].Payload["chunk_id"] != "games/chess.pdf:0:0" {
		t.Fatalf("payload chunk_id = %v", gotPoints[0].Payload["chunk_id"])
	}
}

func TestExistingIDsScrollsAllPages(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/game_rules/points/scroll" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		calls++
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			if _, ok := body["offset"]; ok {
				t.Errorf("first scroll must not carry an offset")
			}
			_, _ = w.Write([]byte(`{"result":{"points":[{"payload":{"chunk_id":"a:0:0"}},{"payload":{"chunk_id":"a:0:1"}}],"next_page_offset":"cursor-1"}}`))
			return
		}
		if body["offset"] != "cursor-1" {
			t.Errorf("second scroll offset = %v", body["offset"])
		}
		_, _ = w.Write([]byte(`{"result":{"points":[{"payload":{"chunk_id":"b:0:0"}}],"next_page_offset":null}}`))
	}))
	defer server.Close()

	ids, err := New(server.URL).ExistingIDs(context.Background(), "game_rules")
	if err != nil {
		t.Fatalf("ExistingIDs() error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("scroll calls = %d, want 2", calls)
	}
	if len(ids) != 3 {
		t.Fatalf("ids = %v", ids)
	}
	for _, want := range []string{"a:0:0", "a:0:1", "b:0:0"} {
		if _, ok := ids[want]; !ok {
			t.Fatalf("missing id %s in %v", want, ids)
		}
	}
}

func TestExistingIDsMissingCollectionIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ids, err := New(server.URL).ExistingIDs(context.Background(), "game_rules")
	if err != nil {
		t.Fatalf("ExistingIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want empty", ids)
	}
}

func TestSearchMapsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/platform_docs/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["limit"] != float64(5) {
			t.Errorf("limit = %v", body["limit"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[{"score":0.92,"payload":{"chunk_id":"platform/guide.md:0:1","source":"platform/guide.md","page":0,"text":"use the menu"}}]}`))
	}))
	defer server.Close()

	chunks, err := New(server.URL).Search(context.Background(), "platform_docs", []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	got := chunks[0]
	if got.ChunkID != "platform/guide.md:0:1" || got.Source != "platform/guide.md" || got.Page != 0 || got.Text != "use the menu" {
		t.Fatalf("chunk = %+v", got)
	}
	if got.Score != 0.92 {
		t.Fatalf("score = %v", got.Score)
	}
}

func TestSearchMissingCollectionIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	chunks, err := New(server.URL).Search(context.Background(), "game_rules", []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if chunks != nil {
		t.Fatalf("chunks = %v, want nil", chunks)
	}
}

func TestDeleteCollectionMissingIsOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if err := New(server.URL).DeleteCollection(context.Background(), "game_rules"); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}
}

func TestUpsertServerErrorSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":{"error":"collection mangled"}}`))
	}))
	defer server.Close()

	chunks := []domain.Chunk{{ID: "a:0:0", Text: "x"}}
	err := New(server.URL).Upsert(context.Background(), "game_rules", chunks, [][]float32{{0.1}})
	if err == nil {
		t.Fatalf("expected error")
	}
}
