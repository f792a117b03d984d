package bitbucket

import "testing"

func TestPageNextPage(t *testing.T) {
	cases := map[string]int{
		"": 0,
		"https://api.bitbucket.org/2.0/repositories/acme?pagelen=10&page=3": 3,
		"https://api.bitbucket.org/2.0/repositories/acme?pagelen=10":        0,
		"https://api.bitbucket.org/2.0/repositories/acme?page=abc":          0,
	}
	for next, want := range cases {
		if got := (Page{Next: next}).NextPage(); got != want {
			t.Fatalf("NextPage(%q) = %d, want %d", next, got, want)
		}
	}
}

func TestPayloadDecodePage(t *testing.T) {
	p := Payload{Body: []byte(`{
		"pagelen": 10,
		"page": 1,
		"next": "https://api.bitbucket.org/2.0/repositories/acme?page=2",
		"values": [
			{"name": "widget", "full_name": "acme/widget", "slug": "widget"},
			{"name": "gadget", "full_name": "acme/gadget", "slug": "gadget"}
		]
	}`)}

	var page Page
	if err := p.Decode(&page); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	repos, err := DecodeValues[Repository](page)
	if err != nil {
		t.Fatalf("DecodeValues: %v", err)
	}
	if len(repos) != 2 || repos[1].FullName != "acme/gadget" {
		t.Fatalf("unexpected repos %#v", repos)
	}
	if page.NextPage() != 2 {
		t.Fatalf("NextPage = %d", page.NextPage())
	}
}

func TestPayloadDecodeEmpty(t *testing.T) {
	var v map[string]any
	if err := (Payload{}).Decode(&v); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
