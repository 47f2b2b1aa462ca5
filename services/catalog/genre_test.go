package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenres(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"comma separated", "Action, Drama, Comedy", []string{"Action", "Drama", "Comedy"}},
		{"normalizes case and spaces", " action ,  science   fiction", []string{"Action", "Science Fiction"}},
		{"drops duplicates", "drama, Drama, DRAMA", []string{"Drama"}},
		{"hyphenated", "sci-fi", []string{"Sci-Fi"}},
		{"empty falls back", " , ,", []string{DefaultGenre}},
		{"blank falls back", "", []string{DefaultGenre}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGenres(tt.in))
		})
	}
}
