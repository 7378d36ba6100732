package subgraph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petadopt/internal/adoption"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, &ClientOptions{
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestRecentForwards(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if n, ok := req.Variables["n"].(float64); !ok || int(n) != 5 {
			t.Errorf("limit variable = %v", req.Variables["n"])
		}
		w.Write([]byte(`{"data":{"fundsForwardeds":[
			{"petId":"0xabc","shelter":"0xaaaa","amount":"100","blockTimestamp":"1700000000","transactionHash":"0x1"},
			{"petId":"0xdef","shelter":"0xbbbb","amount":"50","blockTimestamp":"1699999999","transactionHash":"0x2"}
		]}}`))
	})

	forwards, err := client.RecentForwards(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent forwards: %v", err)
	}
	if len(forwards) != 2 {
		t.Fatalf("expected 2 records, got %d", len(forwards))
	}
	if forwards[0].Shelter != "0xaaaa" || forwards[0].Amount != "100" {
		t.Fatalf("first record = %+v", forwards[0])
	}
}

func TestRecentAdoptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if n, ok := req.Variables["n"].(float64); !ok || int(n) != 25 {
			t.Errorf("limit variable = %v", req.Variables["n"])
		}
		w.Write([]byte(`{"data":{"petAdopteds":[
			{"petId":"7429","amount":"1000000000000","adopter":"0xcccc","shelter":"0xaaaa","blockTimestamp":"1700000000","transactionHash":"0x4"},
			{"petId":"3856","amount":"2000000000000","adopter":"0xdddd","shelter":"0xbbbb","blockTimestamp":"1699999999","transactionHash":"0x5"}
		]}}`))
	})

	adoptions, err := client.RecentAdoptions(context.Background(), 25)
	if err != nil {
		t.Fatalf("recent adoptions: %v", err)
	}
	if len(adoptions) != 2 {
		t.Fatalf("expected 2 records, got %d", len(adoptions))
	}
	if adoptions[0].PetID != "7429" || adoptions[0].Adopter != "0xcccc" {
		t.Fatalf("first record = %+v", adoptions[0])
	}
}

func TestShelterActivityLowercasesAddress(t *testing.T) {
	var gotShelter string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotShelter, _ = req.Variables["shelter"].(string)
		w.Write([]byte(`{"data":{"fundsForwardeds":[],"petAdopteds":[]}}`))
	})

	activity, err := client.ShelterActivity(context.Background(), "0xD1B2A0692031082D16916454CFAbaae94E2Ee366")
	if err != nil {
		t.Fatalf("shelter activity: %v", err)
	}
	if gotShelter != "0xd1b2a0692031082d16916454cfabaae94e2ee366" {
		t.Fatalf("shelter variable not lowercased: %s", gotShelter)
	}
	if len(activity.Forwards) != 0 || len(activity.Adoptions) != 0 {
		t.Fatalf("unexpected records: %+v", activity)
	}
}

func TestAdopterHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"petAdopteds":[
			{"petId":"7429","amount":"1000000000000","adopter":"0xcccc","shelter":"0xaaaa","blockTimestamp":"1700000000","transactionHash":"0x3"}
		]}}`))
	})

	adoptions, err := client.AdopterHistory(context.Background(), "0xCCCC")
	if err != nil {
		t.Fatalf("adopter history: %v", err)
	}
	if len(adoptions) != 1 || adoptions[0].PetID != "7429" {
		t.Fatalf("adoptions = %+v", adoptions)
	}
}

func TestUniqueSheltersAggregates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"fundsForwardeds":[
			{"petId":"0xabc","shelter":"0xaaaa","amount":"100","blockTimestamp":"3","transactionHash":"0x1"},
			{"petId":"0xabc","shelter":"0xbbbb","amount":"10","blockTimestamp":"2","transactionHash":"0x2"},
			{"petId":"0xdef","shelter":"0xaaaa","amount":"50","blockTimestamp":"1","transactionHash":"0x3"}
		]}}`))
	})

	groups, err := client.UniqueShelters(context.Background(), 50)
	if err != nil {
		t.Fatalf("unique shelters: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Shelter != "0xaaaa" || groups[0].TotalAmount.String() != "150" || groups[0].TxCount != 2 {
		t.Fatalf("first group = %+v", groups[0])
	}
}

func TestQueryGraphQLError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"field does not exist"}]}`))
	})

	_, err := client.RecentForwards(context.Background(), 10)
	if !adoption.IsKind(err, adoption.KindIndexUnavailable) {
		t.Fatalf("expected IndexUnavailable, got %v", err)
	}
}

func TestQueryServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.RecentForwards(context.Background(), 10)
	if !adoption.IsKind(err, adoption.KindIndexUnavailable) {
		t.Fatalf("expected IndexUnavailable, got %v", err)
	}
}

func TestQueryRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"fundsForwardeds":[]}}`))
	})

	forwards, err := client.RecentForwards(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent forwards: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected a retry, got %d attempts", attempts)
	}
	if len(forwards) != 0 {
		t.Fatalf("unexpected records: %+v", forwards)
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient("", nil); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}
