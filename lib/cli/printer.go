package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/icco/movies/lib/collection"
	"github.com/icco/movies/lib/omdb"
	"github.com/icco/movies/lib/query"
	"github.com/icco/movies/lib/types"
	"github.com/icco/movies/lib/validation"
	"github.com/icco/movies/models"
)

// Printer writes user-facing output.
type Printer struct {
	w       io.Writer
	success *color.Color
	info    *color.Color
	warn    *color.Color
	fail    *color.Color
	title   *color.Color
}

// NewPrinter writes to w, without ANSI colors when noColor is set.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:       w,
		success: color.New(color.FgGreen, color.Bold),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed, color.Bold),
		title:   color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.success, p.info, p.warn, p.fail, p.title} {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) Success(format string, args ...interface{}) {
	p.success.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Info(format string, args ...interface{}) {
	p.info.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Warn(format string, args ...interface{}) {
	p.warn.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Error prints the message for err. "Nothing to show" outcomes are warnings,
// everything else a failure.
func (p *Printer) Error(err error) {
	if errors.Is(err, query.ErrNoData) {
		p.Warn("%s", describe(err))
		return
	}
	p.fail.Fprintf(p.w, "%s\n", describe(err))
}

// Movie prints "Title (Year): Rating".
func (p *Printer) Movie(m models.Movie) {
	p.title.Fprint(p.w, m.Title)
	fmt.Fprintf(p.w, " (%s): %s\n", m.Year, m.Rating)
}

func (p *Printer) Movies(movies []models.Movie) {
	for _, m := range movies {
		p.Movie(m)
	}
}

func (p *Printer) Stats(stats *types.Stats) {
	p.Line("Average rating: %.1f", stats.Average)
	p.Line("Median rating: %s", formatRating(stats.Median))
	p.Line("Best: %s (%s)", strings.Join(stats.Best.Titles, ", "), formatRating(stats.Best.Rating))
	p.Line("Worst: %s (%s)", strings.Join(stats.Worst.Titles, ", "), formatRating(stats.Worst.Rating))
}

func formatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// describe turns an operation error into the message shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, omdb.ErrNotFound):
		msg := err.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	case errors.Is(err, omdb.ErrUnavailable):
		return "The movie database is not accessible. Please check your connection and try again later."
	case errors.Is(err, collection.ErrDuplicate):
		return "That movie is already in your collection."
	case errors.Is(err, collection.ErrBusy):
		return "Your collection is being changed elsewhere. Please try again."
	case errors.Is(err, collection.ErrUnknownUser):
		return "No such user."
	case errors.Is(err, collection.ErrStorage):
		return fmt.Sprintf("Database error: %v", err)
	case errors.Is(err, query.ErrNoMovies):
		return "No movies in your collection."
	case errors.Is(err, query.ErrNoRatings):
		return "No numeric ratings found."
	case errors.Is(err, query.ErrNoMatches):
		return "No movies found matching your search."
	case errors.Is(err, validation.ErrInvalidInput):
		return strings.TrimPrefix(err.Error(), validation.ErrInvalidInput.Error()+": ")
	default:
		return err.Error()
	}
}
