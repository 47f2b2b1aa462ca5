package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

// Helper exposes formatting functions to the templates.
type Helper struct{}

func NewHelper() *Helper {
	return &Helper{}
}

type Star struct {
	Value    float64
	Title    string
	Selected bool
	HalfStep bool
}

// MakeStars maps a 0-10 rating onto half step stars out of five.
func (s *Helper) MakeStars(r float64) (stars []Star) {
	step := 0.5
	maxStar := 5.0
	maxRating := 10.0
	rating := r / maxRating * maxStar
	for i := float64(0); i <= maxStar; i = i + step {
		stars = append(stars, Star{
			Value:    i,
			Title:    fmt.Sprintf("%.1f", i),
			Selected: rating >= i && rating < i+step,
			HalfStep: int((i-float64(int(i)))*2) == 1,
		})
	}
	return stars
}

// KCount renders a counter in thousands with one decimal, 15420 as "15.4k".
func (s *Helper) KCount(n int64) string {
	return fmt.Sprintf("%.1fk", float64(n)/1000)
}

func (s *Helper) Comma(n int64) string {
	return humanize.Comma(n)
}

func (s *Helper) Rating(r float64) string {
	return fmt.Sprintf("%.1f", r)
}

func (s *Helper) Runtime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return durafmt.Parse(time.Duration(minutes) * time.Minute).LimitFirstN(2).String()
}

func (s *Helper) FirstGenres(genres []string, n int) []string {
	if len(genres) <= n {
		return genres
	}
	return genres[:n]
}

func (s *Helper) JoinGenres(genres []string) string {
	return strings.Join(genres, ", ")
}

func (s *Helper) UploadedAgo(t *time.Time) string {
	if t == nil {
		return ""
	}
	return humanize.Time(*t)
}
