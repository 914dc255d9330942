package post

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMetadataBagSet(t *testing.T) {
	var bag MetadataBag

	if err := bag.Set("news.mode", "daily_news"); err != nil {
		t.Fatal(err)
	}
	if err := bag.Set("news.picked.title", "headline"); err != nil {
		t.Fatal(err)
	}

	if got := bag.Get("news.mode").String(); got != "daily_news" {
		t.Errorf("news.mode = %q", got)
	}
	if !bag.Has("news.picked.title") {
		t.Error("nested path should exist")
	}
}

func TestMetadataBagSetRefusesOverwrite(t *testing.T) {
	var bag MetadataBag
	if err := bag.Set("image.provider", "pexels"); err != nil {
		t.Fatal(err)
	}

	err := bag.Set("image.provider", "other")
	if !errors.Is(err, ErrBagKeyExists) {
		t.Fatalf("want ErrBagKeyExists, got %v", err)
	}
	if got := bag.Get("image.provider").String(); got != "pexels" {
		t.Errorf("recorded value was overwritten: %q", got)
	}
}

func TestMetadataBagSetDefault(t *testing.T) {
	var bag MetadataBag
	if err := bag.SetDefault("fake_news.is_fiction", true); err != nil {
		t.Fatal(err)
	}
	// Second default is a silent no-op, not an error.
	if err := bag.SetDefault("fake_news.is_fiction", false); err != nil {
		t.Fatal(err)
	}
	if !bag.Get("fake_news.is_fiction").Bool() {
		t.Error("first default should win")
	}
}

func TestMetadataBagJSONRoundTrip(t *testing.T) {
	var bag MetadataBag
	if err := bag.Set("news.mode", "daily_news_multi"); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(bag)
	if err != nil {
		t.Fatal(err)
	}

	var back MetadataBag
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if got := back.Get("news.mode").String(); got != "daily_news_multi" {
		t.Errorf("round trip lost value: %q", got)
	}
}

func TestMetadataBagEmptyMarshal(t *testing.T) {
	var bag MetadataBag
	data, err := json.Marshal(bag)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("empty bag = %s, want {}", data)
	}

	var back MetadataBag
	if err := back.UnmarshalJSON([]byte("not json")); err == nil {
		t.Error("invalid JSON should be rejected")
	}
}
