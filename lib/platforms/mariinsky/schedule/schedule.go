// Package schedule discovers the event codes of a period from the portal's
// schedule page.
package schedule

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"mariinsky-counter/lib/htmlutil"
	"mariinsky-counter/lib/platforms/mariinsky/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mariinsky.platforms.mariinsky.schedule")

// Keywords are matched as substrings of a schedule entry's title.
type Keywords struct {
	Rehearsal []string `json:"rehearsal"`
	// Skip marks entries that are neither counted as performances nor as
	// rehearsals, it takes precedence over Rehearsal.
	Skip []string `json:"skip"`
}

var commonKeywords = Keywords{
	Rehearsal: []string{"Реп.", "Сц. фп.", "Орк. сцен. реп.", "Ген. реп."},
	Skip:      []string{"Явка на грим", "(сверка)"},
}

func DefaultKeywords(department core.Department) Keywords {
	keywords := Keywords{
		Rehearsal: slices.Clone(commonKeywords.Rehearsal),
		Skip:      slices.Clone(commonKeywords.Skip),
	}
	switch department {
	case core.Ballet:
		keywords.Rehearsal = append(keywords.Rehearsal, "+балет")
		keywords.Skip = append(keywords.Skip, "Урок балета")
	case core.Extras:
		keywords.Rehearsal = append(keywords.Rehearsal, "Тех. работы", "миманс")
		keywords.Skip = append(keywords.Skip, "Занятие +миманс")
	}
	return keywords
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Codes are the unique, sorted event codes of one department.
type Codes struct {
	Performances []string
	Rehearsals   []string
}

const eventPath = "/Home/MoreInfo/"

var codeRegex = regexp.MustCompile(`\d+`)

// Classify sorts the event links of a schedule into performances and
// rehearsals. Anything that is not an event link is ignored.
func Classify(anchors []htmlutil.Anchor, keywords Keywords) Codes {
	performances := map[string]struct{}{}
	rehearsals := map[string]struct{}{}
	for _, a := range anchors {
		if !strings.Contains(a.Href, eventPath) {
			continue
		}
		code := codeRegex.FindString(a.Href)
		if code == "" {
			continue
		}
		switch {
		case containsAny(a.Name, keywords.Skip):
		case containsAny(a.Name, keywords.Rehearsal):
			rehearsals[code] = struct{}{}
		default:
			performances[code] = struct{}{}
		}
	}
	return Codes{
		Performances: sortedKeys(performances),
		Rehearsals:   sortedKeys(rehearsals),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ParseSchedule reads the links of a saved schedule page.
func ParseSchedule(ctx context.Context, r io.Reader) ([]htmlutil.Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return htmlutil.GetAnchors(ctx, doc.Find("a[href]")), nil
}

type Client struct {
	Portal *core.Client
	// Path is the schedule page, relative to the portal's base url.
	Path string
}

// Fetch loads the schedule of a department between two DD.MM.YYYY dates
// (inclusive) and returns its links.
func (c Client) Fetch(ctx context.Context, department core.Department, startDate, finishDate string) ([]htmlutil.Anchor, error) {
	ctx, span := tracer.Start(ctx, "schedule:Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("department", string(department)),
		attribute.String("start", startDate),
		attribute.String("finish", finishDate),
	)

	menu, err := department.MenuCode()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := c.Portal.Page(ctx, c.Path, nil, map[string]string{
		"startDate":  startDate,
		"finishDate": finishDate,
		"dep":        menu,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch schedule")
		return nil, fmt.Errorf("fetch %s schedule: %w", department, err)
	}

	anchors := htmlutil.GetAnchors(ctx, doc.Find("a[href]"))
	span.SetAttributes(attribute.Int("anchors", len(anchors)))
	return anchors, nil
}
