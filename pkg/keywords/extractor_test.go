package keywords

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"testing"

	"influencer-scout-be/pkg/llm"
)

type fakeProvider struct {
	reply string
	err   error
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, nil, options...)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  []string
	}{
		{
			name:  "clean JSON",
			reply: `{"keywords": ["tech influencers", "TikTok", "US"]}`,
			want:  []string{"tech influencers", "TikTok", "US"},
		},
		{
			name:  "JSON wrapped in prose",
			reply: "Here are the keywords:\n{\"keywords\": [\"beauty\", \"20-25 years\"]}\nHope this helps!",
			want:  []string{"beauty", "20-25 years"},
		},
		{
			name:  "call failure yields empty set",
			err:   errors.New("boom"),
			want:  nil,
		},
		{
			name:  "unparseable reply yields empty set",
			reply: "I could not find any keywords.",
			want:  nil,
		},
		{
			name:  "empty keyword list",
			reply: `{"keywords": []}`,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(&fakeProvider{reply: tt.reply, err: tt.err}, log.New(io.Discard, "", 0))
			got := e.Extract(context.Background(), "some summary")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		want  []string
	}{
		{
			name:  "exact duplicates case-insensitive",
			terms: []string{"UK", "uk", "fitness"},
			want:  []string{"UK", "fitness"},
		},
		{
			name:  "superset dropped in favor of shorter term",
			terms: []string{"UK influencers", "UK"},
			want:  []string{"UK"},
		},
		{
			name:  "substring without word boundary survives",
			terms: []string{"art", "startup"},
			want:  []string{"art", "startup"},
		},
		{
			name:  "blanks dropped",
			terms: []string{"", "  ", "gaming"},
			want:  []string{"gaming"},
		},
		{
			name:  "order of first appearance preserved",
			terms: []string{"fashion", "travel", "fashion bloggers"},
			want:  []string{"fashion", "travel"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.terms)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dedupe(%v) = %v, want %v", tt.terms, got, tt.want)
			}
		})
	}
}
